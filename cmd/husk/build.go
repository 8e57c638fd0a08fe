package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/husk-build/husk/internal/buildcfg"
	"github.com/husk-build/husk/internal/bundle"
	"github.com/husk-build/husk/internal/config"
)

func buildCmd() *cobra.Command {
	var (
		output  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bundle for production",
		Long: `Bundle the project's entry documents for production.

Bundling is driven entirely by the environment-resolved configuration:
HUSK_PLATFORM selects the engine target (chrome105 on windows, safari13
everywhere else) and HUSK_DEBUG switches off minification and turns on
source maps. Static assets are copied with content hashes and recorded
in manifest.json.

Examples:
  husk build
  HUSK_PLATFORM=windows husk build
  HUSK_DEBUG=1 husk build --output=dist-debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(output, verbose)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from husk.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runBundle(output string, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}
	if output != "" {
		cfg.Build.Output = output
	}

	env := buildcfg.FromOS(os.Environ())
	resolved := buildcfg.Resolve(env)

	fmt.Println("  Building for production...")
	info("Target: %s", resolved.Target)
	if resolved.Minify == buildcfg.MinifyOff {
		info("Debug build: minification off, source maps on")
	}
	fmt.Println()

	pipeline := bundle.New(bundle.Options{
		Config:   cfg,
		Resolved: resolved,
		Env:      env,
		OutDir:   cfg.OutputPath(),
		Logger:   newLogger(verbose),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result, err := pipeline.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	success("Build complete in %s", result.Duration.Round(time.Millisecond))
	fmt.Println()
	fmt.Println("  Output:")
	fmt.Printf("    %s/\n", cfg.Build.Output)

	names := make([]string, 0, len(result.Manifest))
	for name := range result.Manifest {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("    ├── %-28s → %s\n", name, result.Manifest[name])
	}
	fmt.Printf("    └── manifest.json\n")
	fmt.Println()
	info("JavaScript: %s", formatBytes(result.JSBytes))
	fmt.Println()

	return nil
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
