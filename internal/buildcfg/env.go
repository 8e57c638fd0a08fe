package buildcfg

import "strings"

// Environ is an immutable snapshot of environment variables. The resolver
// takes it as an explicit parameter so callers (and tests) control exactly
// what it sees.
type Environ map[string]string

// FromOS builds an Environ from a process environment in the "KEY=value"
// form returned by os.Environ. Malformed entries are skipped.
func FromOS(environ []string) Environ {
	env := make(Environ, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// Truthy reports whether an environment value counts as set. The shell host
// evaluates these flags with JavaScript coercion, so any non-empty string is
// truthy, including "0" and "false".
func Truthy(value string) bool {
	return value != ""
}

// Exposed returns the subset of env whose names carry one of the allowed
// prefixes. This is the pass-through set the bundler may inject into the
// front-end; everything else stays server-side.
func Exposed(env Environ, prefixes []string) Environ {
	out := make(Environ)
	for key, value := range env {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				out[key] = value
				break
			}
		}
	}
	return out
}
