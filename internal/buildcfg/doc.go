// Package buildcfg resolves the front-end build configuration for a husk
// project from environment variables.
//
// The resolver is a pure function: given an Environ snapshot it produces an
// immutable BuildConfiguration consumed by the bundling pipeline and the dev
// server. It never reads ambient process state, never touches the filesystem,
// and never fails. Unknown or absent variables fall through to the default
// branches, so every input maps to a complete configuration.
//
// Resolved fields:
//
//   - Entry points: the two fixed HTML documents ("main" and "live")
//   - Dev server: fixed port with the strict-port policy
//   - Target: engine baseline selected by HUSK_PLATFORM
//   - Minify and source maps: driven by HUSK_DEBUG
//   - Excluded optimization deps: modules that load their own WASM
//   - Allowed env prefixes: names exposed to the front-end bundle
package buildcfg
