package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Environment overrides. A .env file in the working directory is honored.
const (
	EnvDB       = "CBUDGET_DB"
	EnvLogLevel = "CBUDGET_LOG_LEVEL"
	EnvAddr     = "CBUDGET_DAEMON_ADDR"
)

// Config holds all cbudget configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Alerts     AlertsConfig     `toml:"alerts"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath       string `toml:"db_path,omitempty"`
	ReportMonths int    `toml:"report_months"`
}

// AlertsConfig seeds the thresholds of a fresh store. Once a store has
// thresholds of its own, those win.
type AlertsConfig struct {
	Warning              int  `toml:"warning"`
	Danger               int  `toml:"danger"`
	SavingsGoalEnabled   bool `toml:"savings_goal_enabled"`
	SavingsNotifications bool `toml:"savings_notifications"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh     bool `toml:"auto_refresh"`
	RefreshInterval int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	PollInterval int    `toml:"poll_interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	th := model.DefaultThresholds()
	return Config{
		General: GeneralConfig{
			ReportMonths: 6,
		},
		Alerts: AlertsConfig{
			Warning:              th.Warning,
			Danger:               th.Danger,
			SavingsGoalEnabled:   th.SavingsGoalEnabled,
			SavingsNotifications: th.SavingsNotifications,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:     true,
			RefreshInterval: 30,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			PollInterval: 15,
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level:  "warn",
			Pretty: true,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cbudget")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the store.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cbudget")
}

// DBPath returns the store path: the configured one, or the data dir default.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(DataDir(), "budget.db")
}

// Thresholds converts the [alerts] section to engine thresholds.
func (c Config) Thresholds() model.AlertThresholds {
	return model.AlertThresholds{
		Warning:              c.Alerts.Warning,
		Danger:               c.Alerts.Danger,
		SavingsGoalEnabled:   c.Alerts.SavingsGoalEnabled,
		SavingsNotifications: c.Alerts.SavingsNotifications,
	}
}

// Validate checks values that would otherwise surface as odd runtime behavior.
func (c Config) Validate() error {
	if c.Alerts.Warning <= 0 || c.Alerts.Warning >= c.Alerts.Danger {
		return fmt.Errorf("alerts: warning (%d) must be positive and below danger (%d)", c.Alerts.Warning, c.Alerts.Danger)
	}
	if c.General.ReportMonths <= 0 {
		return fmt.Errorf("general: report_months must be positive, got %d", c.General.ReportMonths)
	}
	if c.Daemon.PollInterval <= 0 {
		return fmt.Errorf("daemon: poll_interval_sec must be positive, got %d", c.Daemon.PollInterval)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path. A missing file yields defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Daemon.Addr = v
	}
	if v := os.Getenv("CBUDGET_LOG_PRETTY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Pretty = b
		}
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's own config
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
