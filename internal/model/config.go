package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// APIConfig holds the settings for talking to the CRM backend.
type APIConfig struct {
	// BaseURL is the backend root (scheme, host and port, no /api/v1).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// AuthScheme prefixes the token in the Authorization header.
	AuthScheme string `mapstructure:"auth_scheme" yaml:"auth_scheme"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// RatePerSec caps outgoing requests; Burst is the bucket size.
	RatePerSec float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
	Burst      int     `mapstructure:"burst" yaml:"burst"`
}

// PollConfig holds the refresh cadence of a background poll task.
type PollConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	Language string `mapstructure:"language" yaml:"language"`
}

// StorageConfig locates the local cache database.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig     `mapstructure:"api" yaml:"api"`
	Inbox         PollConfig    `mapstructure:"inbox" yaml:"inbox"`
	Notifications PollConfig    `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig `mapstructure:"display" yaml:"display"`
	Storage       StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// ConfigDir returns ~/.config/crmterm, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "crmterm")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/crmterm/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://127.0.0.1:8000",
			AuthScheme: "Token",
			TimeoutSec: 30,
			RatePerSec: 10,
			Burst:      5,
		},
		Inbox:         PollConfig{PollIntervalSec: 60},
		Notifications: PollConfig{PollIntervalSec: 30},
		Display: DisplayConfig{
			Theme:    "default",
			Language: "en",
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(ConfigDir(), "crmterm.db"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.auth_scheme", d.API.AuthScheme)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.rate_per_sec", d.API.RatePerSec)
	v.SetDefault("api.burst", d.API.Burst)
	v.SetDefault("inbox.poll_interval_sec", d.Inbox.PollIntervalSec)
	v.SetDefault("notifications.poll_interval_sec", d.Notifications.PollIntervalSec)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.language", d.Display.Language)
	v.SetDefault("storage.db_path", d.Storage.DBPath)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with CRMTERM_ override file values
// (CRMTERM_API_BASE_URL overrides api.base_url). A missing file yields
// the defaults plus any environment overrides.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CRMTERM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Inbox.PollIntervalSec <= 0 {
		cfg.Inbox.PollIntervalSec = 60
	}
	if cfg.Notifications.PollIntervalSec <= 0 {
		cfg.Notifications.PollIntervalSec = 30
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("inbox", cfg.Inbox)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)
	v.Set("storage", cfg.Storage)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
