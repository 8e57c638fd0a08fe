package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/husk-build/husk/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "husk.json"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultHost is the host the dev server binds.
	DefaultHost = "localhost"
)

// Config represents the complete husk.json manifest.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Dev contains development server settings.
	Dev DevConfig `json:"dev,omitempty"`

	// Build contains production build settings.
	Build BuildConfig `json:"build,omitempty"`

	// Deploy contains the deployment target.
	Deploy DeployConfig `json:"deploy,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Host is the interface to bind. The port is resolver-owned and fixed.
	Host string `json:"host,omitempty"`

	// OpenBrowser opens the browser automatically on start.
	OpenBrowser bool `json:"openBrowser,omitempty"`

	// Watch contains additional paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains patterns to skip during watch.
	Ignore []string `json:"ignore,omitempty"`

	// HotReload enables browser refresh on change.
	HotReload *bool `json:"hotReload,omitempty"`
}

// BuildConfig contains production build settings.
type BuildConfig struct {
	// Output is the output directory for builds.
	Output string `json:"output,omitempty"`

	// Static is the directory of static assets copied verbatim (hashed).
	Static string `json:"static,omitempty"`
}

// DeployConfig contains the S3 deployment target.
type DeployConfig struct {
	// Bucket is the S3 bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the key prefix inside the bucket.
	Prefix string `json:"prefix,omitempty"`

	// Region overrides the AWS region from the environment.
	Region string `json:"region,omitempty"`

	// Prune removes remote keys that no longer exist locally.
	Prune bool `json:"prune,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	hot := true
	return &Config{
		Version: "0.1.0",
		Dev: DevConfig{
			Host:      DefaultHost,
			HotReload: &hot,
			Watch:     []string{"src", "public"},
		},
		Build: BuildConfig{
			Output: DefaultOutput,
			Static: "public",
		},
	}
}

// Load reads configuration from husk.json in the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E102").
				WithDetail("No husk.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'husk create' to scaffold a new project")
		}
		return nil, errors.New("E104").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse husk.json: " + err.Error()).
			WithSuggestion("Check that husk.json is valid JSON (comments are allowed)")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path. Comments are not
// preserved; Save is only used by scaffolding, never on hand-edited files.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E104").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the project root: the directory containing husk.json.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{"src", "public"}
	}
	if c.Dev.HotReload == nil {
		hot := true
		c.Dev.HotReload = &hot
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
	if c.Build.Static == "" {
		c.Build.Static = "public"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Deploy.Prefix != "" && filepath.IsAbs(c.Deploy.Prefix) {
		return errors.Newf(errors.CategoryConfig, "deploy.prefix must be relative, got %q", c.Deploy.Prefix)
	}
	return nil
}

// HotReload reports whether browser refresh on change is enabled.
func (c *Config) HotReload() bool {
	return c.Dev.HotReload == nil || *c.Dev.HotReload
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Build.Output)
}

// StaticPath returns the absolute path to the static asset directory.
func (c *Config) StaticPath() string {
	return c.resolve(c.Build.Static)
}

// EntryPath resolves an entry document path against the project root.
func (c *Config) EntryPath(rel string) string {
	return c.resolve(rel)
}

func (c *Config) resolve(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing husk.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E102").
				WithDetail("No husk.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'husk create' to scaffold a new project")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
