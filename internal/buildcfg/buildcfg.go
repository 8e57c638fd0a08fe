package buildcfg

const (
	// EnvPlatform names the shell platform the build targets.
	EnvPlatform = "HUSK_PLATFORM"

	// EnvDebug enables debug builds (no minification, source maps on).
	EnvDebug = "HUSK_DEBUG"

	// DevPort is the fixed development server port. The dev server binds
	// exactly this port and fails rather than picking another one, so the
	// shell host always knows where to find it.
	DevPort = 1420

	// TargetWindows is the engine baseline for Windows shells (WebView2).
	TargetWindows = "chrome105"

	// TargetDefault is the engine baseline for every other shell (WKWebView).
	TargetDefault = "safari13"
)

// MinifyMode is the minification setting handed to the bundler.
type MinifyMode string

const (
	// MinifyEsbuild minifies output with the bundler's own minifier.
	MinifyEsbuild MinifyMode = "esbuild"

	// MinifyOff disables minification.
	MinifyOff MinifyMode = "off"
)

// DevServer is the dev-server portion of the build configuration.
type DevServer struct {
	// Port is the TCP port the dev server must bind.
	Port int `json:"port"`

	// StrictPort makes the server fail fast when Port is taken instead of
	// silently substituting another port.
	StrictPort bool `json:"strictPort"`
}

// BuildConfiguration is the resolved build configuration for one invocation.
// It is constructed once by Resolve and never mutated afterward.
type BuildConfiguration struct {
	// EntryPoints maps logical entry names to HTML paths relative to the
	// project root.
	EntryPoints map[string]string `json:"entryPoints"`

	// DevServer holds the dev-server settings.
	DevServer DevServer `json:"devServer"`

	// Target is the engine compatibility baseline the compiled output must
	// support.
	Target string `json:"target"`

	// Minify selects the minification mode.
	Minify MinifyMode `json:"minify"`

	// SourceMaps enables source map generation.
	SourceMaps bool `json:"sourceMaps"`

	// ExcludedOptimizationDeps are module identifiers the bundler must not
	// pre-bundle. These packages manage their own loading (dynamic imports,
	// WASM fetch) and break when inlined.
	ExcludedOptimizationDeps []string `json:"excludedOptimizationDeps"`

	// AllowedEnvPrefixes is the ordered list of variable-name prefixes
	// exposed to the front-end.
	AllowedEnvPrefixes []string `json:"allowedEnvPrefixes"`
}

// Resolve computes the build configuration from an environment snapshot.
//
// Resolve is total and deterministic: identical input yields a deep-equal
// result, and no input can make it fail. Validation concerns such as a taken
// port or a missing entry file belong to the consumers (dev server, bundler),
// not to the resolver.
func Resolve(env Environ) BuildConfiguration {
	target := TargetDefault
	if env[EnvPlatform] == "windows" {
		target = TargetWindows
	}

	debug := Truthy(env[EnvDebug])

	minify := MinifyEsbuild
	if debug {
		minify = MinifyOff
	}

	return BuildConfiguration{
		EntryPoints: map[string]string{
			"main": "index.html",
			"live": "live.html",
		},
		DevServer: DevServer{
			Port:       DevPort,
			StrictPort: true,
		},
		Target:     target,
		Minify:     minify,
		SourceMaps: debug,
		ExcludedOptimizationDeps: []string{
			"@ffmpeg/ffmpeg",
			"@ffmpeg/util",
		},
		AllowedEnvPrefixes: []string{"HUSK_", "SHELL_"},
	}
}

// IsMobilePlatform reports whether the platform variable names a mobile
// shell. No resolved field currently branches on it; it is kept as the hook
// for mobile target differentiation and surfaced by `husk config`.
func IsMobilePlatform(env Environ) bool {
	p := env[EnvPlatform]
	return p == "android" || p == "ios"
}
