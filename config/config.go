package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlAccount represents one account to collect from TOML
type TomlAccount struct {
	Handle string `toml:"handle"`
}

// TomlCollect represents collection settings
type TomlCollect struct {
	Limit     int    `toml:"limit,omitempty"`
	PageSize  int    `toml:"page_size,omitempty"`
	DelayMs   int    `toml:"delay_ms,omitempty"`
	MaxRounds int    `toml:"max_rounds,omitempty"`
	Output    string `toml:"output,omitempty"`
	CSV       string `toml:"csv,omitempty"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Collect  TomlCollect   `toml:"collect"`
	Accounts []TomlAccount `toml:"accounts"`
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

// Handles returns the configured account handles in file order.
func (c *TomlConfig) Handles() []string {
	handles := make([]string, 0, len(c.Accounts))
	for _, account := range c.Accounts {
		if account.Handle != "" {
			handles = append(handles, account.Handle)
		}
	}
	return handles
}
