package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds application configuration
type Config struct {
	// Shell overrides $SHELL as the program spawned in the PTY.
	Shell string `json:"shell,omitempty"`
	// Rows and Cols are the initial grid size when the caller supplies
	// no geometry. Zero means the built-in 80x24 default.
	Rows int `json:"rows,omitempty"`
	Cols int `json:"cols,omitempty"`
	// LogDir is where session JSONL logs are written. Empty disables
	// session logging.
	LogDir string `json:"log_dir,omitempty"`

	Discord DiscordConfig `json:"discord"`
}

// DiscordConfig holds settings for streaming session snapshots to a
// Discord channel. Streaming is off unless a channel is configured.
type DiscordConfig struct {
	Enabled   bool   `json:"enabled"`
	ChannelID string `json:"channel_id"`
}

// configSearchPaths returns paths to search for config, in order of priority
func configSearchPaths() []string {
	paths := []string{}

	// First: ~/.config/korzeterm/config.json
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "korzeterm", "config.json"))
	}

	// Second: local/ directory relative to executable (for development)
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "local", "config.json"))
	}

	// Third: current directory
	paths = append(paths, "local/config.json")

	return paths
}

// DefaultConfigPath returns the first config path that exists, or the preferred path if none exist
func DefaultConfigPath() string {
	paths := configSearchPaths()

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if len(paths) > 0 {
		return paths[0]
	}
	return "local/config.json"
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDefault loads configuration from the default path. A missing file
// yields the zero config, not an error.
func LoadDefault() (*Config, error) {
	cfg, err := Load(DefaultConfigPath())
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	return cfg, err
}

// Save writes configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
