package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/prism-go/common"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file.
// An empty path searches the standard locations and yields the defaults when
// none exists; an explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	sanitize(cfg)
	return cfg, nil
}

// sanitize restores defaults for fields where an explicit zero in the file
// is unusable: window dimensions, the tick rate, and the string selectors.
// Zero stays meaningful where it selects a mode (frame_limit, msaa_samples,
// extract_workers).
func sanitize(cfg *Config) {
	d := Default()
	cfg.Graphics.Width = common.Coalesce(cfg.Graphics.Width, d.Graphics.Width)
	cfg.Graphics.Height = common.Coalesce(cfg.Graphics.Height, d.Graphics.Height)
	cfg.Graphics.Tonemap = common.Coalesce(cfg.Graphics.Tonemap, d.Graphics.Tonemap)
	cfg.Engine.TickRate = common.Coalesce(cfg.Engine.TickRate, d.Engine.TickRate)
	cfg.Logging.Level = common.Coalesce(cfg.Logging.Level, d.Logging.Level)
}

// Save writes the configuration as YAML to the given path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./prism.yaml",
		filepath.Join(configDir(), "prism.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configDir returns the user config directory for this engine.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prism")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "prism")
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
