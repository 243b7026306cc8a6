// Package claudegrepconfig provides project-level configuration for
// claudegrep. It supports loading from a .claudegrep/config.yaml file,
// with precedence CLI flags > project config > built-in defaults,
// mirroring the teacher's pkg/config.
package claudegrepconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name for claudegrep configuration.
	ConfigDir = ".claudegrep"
	// ConfigFile is the name of the configuration file.
	ConfigFile = "config.yaml"
	// ConfigPath is the full path to the config file relative to project root.
	ConfigPath = ConfigDir + "/" + ConfigFile
)

// Config holds the resolvable settings of §6.3's command-line surface.
// Fields are yaml-tagged with omitempty so an unset field in a project
// config file decodes to its zero value and is therefore skipped by a
// mergo.WithOverride merge (mergo never overwrites with a zero value
// unless told to).
type Config struct {
	Format     string `yaml:"format,omitempty"`
	MaxResults int    `yaml:"max_results,omitempty"`
	NoColor    bool   `yaml:"no_color,omitempty"`
	Verbose    bool   `yaml:"verbose,omitempty"`
}

// Defaults returns claudegrep's built-in defaults (§4.4.1, §6.3).
func Defaults() Config {
	return Config{
		Format:     "text",
		MaxResults: 50,
		NoColor:    false,
		Verbose:    false,
	}
}

// Load reads .claudegrep/config.yaml from dir or one of its parents. A
// missing file is not an error: it returns a zero Config.
func Load(dir string) (Config, error) {
	path, err := findConfigPath(dir)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("claudegrepconfig: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("claudegrepconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve merges defaults, the project config, and the CLI-supplied
// overrides in that precedence order (CLI highest), using mergo so only
// fields the caller actually set at each layer take effect.
func Resolve(project, cli Config) (Config, error) {
	resolved := Defaults()
	if err := mergo.Merge(&resolved, project, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("claudegrepconfig: merge project config: %w", err)
	}
	if err := mergo.Merge(&resolved, cli, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("claudegrepconfig: merge CLI overrides: %w", err)
	}
	return resolved, nil
}

// findConfigPath searches dir and its ancestors for ConfigPath,
// returning "" when none is found, matching the teacher's
// findConfigPath upward-search-and-join style.
func findConfigPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("claudegrepconfig: resolve %s: %w", dir, err)
	}

	for {
		candidate := filepath.Join(abs, ConfigPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}
