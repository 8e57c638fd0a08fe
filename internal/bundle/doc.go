// Package bundle compiles the front-end of a husk project.
//
// The pipeline consumes the resolved build configuration and drives esbuild
// in-process: each entry HTML document is scanned for module scripts, the
// scripts are bundled against the resolved engine baseline with the resolved
// minification and source map settings, output names are content-hashed, and
// the HTML is rewritten to reference the hashed bundles. Static assets are
// copied with cache busting and an asset manifest is written alongside the
// output.
//
// Modules listed in ExcludedOptimizationDeps are marked external so the
// bundler never inlines them; they fetch their own payloads (WASM, workers)
// at runtime.
//
// Environment variables matching the allowed prefixes are injected as
// import.meta.env.* constants, which is the only channel through which
// process environment reaches the front-end bundle.
package bundle
