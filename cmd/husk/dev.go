package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/husk-build/husk/internal/buildcfg"
	"github.com/husk-build/husk/internal/bundle"
	"github.com/husk-build/husk/internal/config"
	"github.com/husk-build/husk/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		openBrowser bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with hot reload.

The server binds the fixed development port and refuses to start when
it is taken, so the shell host never has to guess where the front-end
lives. File changes trigger a rebuild and refresh connected webviews;
CSS-only changes are applied without a full reload.

Features:
  • Hot reload on file change
  • Error overlay in the webview
  • Prometheus metrics at /metrics

Examples:
  husk dev
  HUSK_DEBUG=1 husk dev
  husk dev --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(openBrowser, verbose)
		},
	}

	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runDev(openBrowser, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	env := buildcfg.FromOS(os.Environ())
	resolved := buildcfg.Resolve(env)

	logger := newLogger(verbose)

	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	server := dev.NewServer(dev.ServerOptions{
		Config:   cfg,
		Resolved: resolved,
		Env:      env,
		Logger:   logger,
		OnBuildComplete: func(result *bundle.Result, err error) {
			if err != nil {
				errorMsg("Build failed: %v", err)
				return
			}
			success("Built in %s", result.Duration.Round(time.Millisecond))
		},
		OnReload: func(clients int) {
			if clients > 0 {
				success("Reloaded %d webviews", clients)
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
		server.Stop()
	}()

	if openBrowser || cfg.Dev.OpenBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			openURL(server.URL())
		}()
	}

	info("Serving at %s", server.URL())
	fmt.Println()

	return server.Start(ctx)
}

// newLogger builds the console logger for interactive commands.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
