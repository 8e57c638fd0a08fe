// Package config loads the husk.json project manifest.
//
// The manifest describes the project around the build: name, watch and
// ignore lists for the dev server, the build output directory, and the
// deployment target. It deliberately does not own any field of the resolved
// build configuration (port, target, entry points, minification) — those are
// environment-determined by the buildcfg resolver.
//
// husk.json tolerates comments (JSONC), matching what editors emit for
// devcontainer-style config files. Comments are stripped before the content
// is decoded with encoding/json.
package config
