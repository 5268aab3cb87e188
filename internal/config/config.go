package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"tiertrack/internal/view"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tiertrack.db"
	DefaultLogName        = "tiertrack.log"
	EnvConfigPath         = "TIERTRACK_CONFIG"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Detail    string `toml:"detail"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
	Edit      string `toml:"edit"`
	Reflect   string `toml:"reflect"`
	Team      string `toml:"team"`
	Leave     string `toml:"leave"`
	FilterAll string `toml:"filter_all"`
	Filter1   string `toml:"filter_1"`
	Filter2   string `toml:"filter_2"`
	Filter3   string `toml:"filter_3"`
	Filter4   string `toml:"filter_4"`
	Completed string `toml:"completed"`
}

type Config struct {
	DBPath        string `toml:"db_path"`
	DefaultFilter string `toml:"default_filter"`
	ShowCompleted bool   `toml:"show_completed"`
	LogLevel      string `toml:"log_level"`
	LogPath       string `toml:"log_path"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath picks the config file: $TIERTRACK_CONFIG, then the
// user config directory, then the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "tiertrack", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first
// if it does not exist. Relative db and log paths resolve against the
// config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg.resolve(path), nil
}

func (c Config) Validate() error {
	if _, err := view.ParseFilter(c.DefaultFilter); err != nil {
		return fmt.Errorf("default_filter: %w", err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ViewState is the initial view selected by the config.
func (c Config) ViewState() view.State {
	f, _ := view.ParseFilter(c.DefaultFilter)
	return view.State{Filter: f, CompletedOnly: c.ShowCompleted}
}

func (c Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(v string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q", v)
	}
}

func (c Config) resolve(path string) Config {
	dir := filepath.Dir(path)
	if c.DBPath != "" && !filepath.IsAbs(c.DBPath) && !strings.HasPrefix(c.DBPath, "file:") {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if c.LogPath != "" && !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
	return c
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:        DefaultDBName,
		DefaultFilter: "all",
		LogLevel:      "info",
		LogPath:       DefaultLogName,
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Up:        "k",
			Down:      "j",
			Toggle:    " ",
			Delete:    "d",
			Detail:    "i",
			Confirm:   "enter",
			Cancel:    "esc",
			Edit:      "e",
			Reflect:   "r",
			Team:      "t",
			Leave:     "L",
			FilterAll: "0",
			Filter1:   "1",
			Filter2:   "2",
			Filter3:   "3",
			Filter4:   "4",
			Completed: "c",
		},
	}
}
