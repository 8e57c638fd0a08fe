package dev

import (
	"path/filepath"

	"github.com/husk-build/husk/internal/buildcfg"
	"github.com/husk-build/husk/internal/config"
)

// CollectWatchPaths returns a normalized list of watch paths for the project:
// the entry documents, the source and static directories, and any extra
// paths from the manifest.
func CollectWatchPaths(cfg *config.Config, resolved buildcfg.BuildConfiguration) []string {
	projectDir := cfg.Dir()

	paths := []string{
		filepath.Join(projectDir, "src"),
		cfg.StaticPath(),
	}
	for _, rel := range resolved.EntryPoints {
		paths = append(paths, cfg.EntryPath(rel))
	}
	for _, path := range cfg.Dev.Watch {
		paths = append(paths, resolvePath(projectDir, path))
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}

func resolvePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}
