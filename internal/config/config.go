package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Secrets (account credentials,
// Telegram tokens) never live here; they are stored in the encrypted vault.
type Config struct {
	Files struct {
		Vault  string `yaml:"vault"`
		Ledger string `yaml:"ledger"`
		Log    string `yaml:"log"`
	} `yaml:"files"`
	Portal struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"portal"`
	Apply struct {
		Quantity int `yaml:"quantity"`
	} `yaml:"apply"`
	Schedule struct {
		ApplyCron string `yaml:"apply_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("AUTOIPO_VAULT"); v != "" {
		cfg.Files.Vault = v
	}
	if v := os.Getenv("AUTOIPO_LEDGER"); v != "" {
		cfg.Files.Ledger = v
	}
	if v := os.Getenv("AUTOIPO_LOG_FILE"); v != "" {
		cfg.Files.Log = v
	}
	if v := os.Getenv("MEROSHARE_BASE_URL"); v != "" {
		cfg.Portal.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("APPLY_QUANTITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Apply.Quantity = n
		}
	}
	if v := os.Getenv("CRON_APPLY"); v != "" {
		cfg.Schedule.ApplyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Files.Vault == "" {
		cfg.Files.Vault = "data/vault.age"
	}
	if cfg.Files.Ledger == "" {
		cfg.Files.Ledger = "data/previously_applied_shares.json"
	}
	if cfg.Apply.Quantity == 0 {
		cfg.Apply.Quantity = 10
	}
	if cfg.Schedule.ApplyCron == "" {
		// Every day at 10:05 local time.
		cfg.Schedule.ApplyCron = "0 5 10 * * *"
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Files.Vault == "" {
		return fmt.Errorf("files.vault is required")
	}
	if c.Files.Ledger == "" {
		return fmt.Errorf("files.ledger is required")
	}
	if c.Apply.Quantity <= 0 {
		return fmt.Errorf("apply.quantity must be positive")
	}
	return nil
}
