package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/husk-build/husk/internal/buildcfg"
	"github.com/husk-build/husk/internal/config"
	"github.com/husk-build/husk/internal/errors"
)

func configCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved build configuration",
		Long: `Resolve the build configuration from the current environment and
print it as JSON.

The resolution is pure: it reads only HUSK_PLATFORM and HUSK_DEBUG and
never touches the filesystem, so the output shows exactly what a build
or dev-server run would use under the same environment.

Examples:
  husk config
  HUSK_PLATFORM=windows husk config
  HUSK_DEBUG=1 husk config
  husk config --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Verify that entry documents exist in the project")

	return cmd
}

func runConfig(check bool) error {
	env := buildcfg.FromOS(os.Environ())
	resolved := buildcfg.Resolve(env)

	out := struct {
		buildcfg.BuildConfiguration
		MobilePlatform bool `json:"mobilePlatform"`
	}{
		BuildConfiguration: resolved,
		MobilePlatform:     buildcfg.IsMobilePlatform(env),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if !check {
		return nil
	}

	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	for name, rel := range resolved.EntryPoints {
		path := cfg.EntryPath(rel)
		if _, err := os.Stat(path); err != nil {
			return errors.New("E503").
				WithDetail(fmt.Sprintf("entry %q expects %s", name, rel)).
				WithSuggestion("Create the missing document or run `husk create` for a fresh project")
		}
	}

	fmt.Println()
	success("All entry documents present")
	return nil
}
