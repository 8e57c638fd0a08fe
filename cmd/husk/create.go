package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/husk-build/husk/internal/config"
	"github.com/husk-build/husk/internal/errors"
)

func createCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new Husk project",
		Long: `Create a new Husk project with the specified name.

The scaffold contains both entry documents (index.html for the main
window, live.html for the always-on-top live window), their module
scripts, and a husk.json manifest.

Examples:
  husk create my-app
  husk create my-app --description="Screen recorder front-end"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")

	return cmd
}

func runCreate(name, description string) error {
	printBanner()
	fmt.Println("  Creating a new Husk project...")
	fmt.Println()

	if !isValidProjectName(name) {
		return errors.New("E502").
			WithDetail("name: " + name).
			WithSuggestion("Use lowercase letters, numbers, and hyphens")
	}

	projectDir, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
		return errors.New("E501").
			WithDetail("Directory '" + name + "' already exists").
			WithSuggestion("Choose a different name or remove the existing directory")
	}

	info("Creating project directory...")
	if err := os.MkdirAll(filepath.Join(projectDir, "src"), 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(projectDir, "public"), 0755); err != nil {
		return err
	}

	info("Writing project files...")
	if err := writeScaffold(projectDir, name); err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	cfg := config.New()
	cfg.Name = name
	if err := cfg.SaveTo(filepath.Join(projectDir, config.ConfigFileName)); err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	fmt.Println()
	success("Created %s/", name)
	fmt.Println()
	fmt.Println("  To get started:")
	fmt.Println()
	fmt.Printf("    cd %s\n", name)
	fmt.Println("    husk dev")
	fmt.Println()
	fmt.Println("  The dev server runs at http://localhost:1420")
	fmt.Println()

	return nil
}

func writeScaffold(dir, name string) error {
	files := map[string]string{
		"index.html": fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>%s</title>
</head>
<body>
  <div id="app"></div>
  <script type="module" src="/src/main.js"></script>
</body>
</html>
`, name),
		"live.html": fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>%s live</title>
</head>
<body>
  <div id="live"></div>
  <script type="module" src="/src/live.js"></script>
</body>
</html>
`, name),
		filepath.Join("src", "main.js"): `const app = document.getElementById("app");
app.textContent = "Hello from the main window";

console.log("platform:", import.meta.env.HUSK_PLATFORM);
`,
		filepath.Join("src", "live.js"): `const live = document.getElementById("live");
live.textContent = "Live window";
`,
	}

	for rel, body := range files {
		if err := os.WriteFile(filepath.Join(dir, rel), []byte(body), 0644); err != nil {
			return err
		}
	}
	return nil
}

// isValidProjectName reports whether name is usable as a directory and
// package name.
func isValidProjectName(name string) bool {
	if name == "" || len(name) > 100 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return !strings.HasPrefix(name, "-") && !strings.HasSuffix(name, "-")
}
