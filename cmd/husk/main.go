package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	huskerrors "github.com/husk-build/husk/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┬ ┬┌─┐┬┌─
  ╠═╣│ │└─┐├┴┐
  ╩ ╩└─┘└─┘┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "husk",
		Short: "The build toolchain for desktop-web shell apps",
		Long: `Husk builds web front-ends that run inside embedded webviews.

It resolves a build configuration from the shell host's environment,
bundles HTML entry documents with their module scripts, and serves
them during development on a fixed, strict port so the shell always
knows where to find the front-end.

Commands:
  • config   Print the resolved build configuration
  • dev      Start the development server with hot reload
  • build    Bundle for production
  • deploy   Upload a build to S3
  • create   Scaffold a new project`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		createCmd(),
		configCmd(),
		devCmd(),
		buildCmd(),
		deployCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if he, ok := err.(*huskerrors.Error); ok {
			fmt.Fprintln(os.Stderr, he.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// printBanner prints the Husk ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
