package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"duelist/internal/task"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultLogName        = "duelist.log"
	DefaultCollection     = "tasks"
	PrefsFileName         = "prefs.toml"
	appDirName            = "duelist"

	defaultRequestTimeout = 10 * time.Second
	defaultNotifyDuration = 3 * time.Second
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Toggle         string `toml:"toggle"`
	Delete         string `toml:"delete"`
	Edit           string `toml:"edit"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	Reload         string `toml:"reload"`
	FilterStatus   string `toml:"filter_status"`
	FilterPriority string `toml:"filter_priority"`
	Theme          string `toml:"theme"`
	SelectMode     string `toml:"select_mode"`
	SelectAll      string `toml:"select_all"`
	DeleteSelected string `toml:"delete_selected"`
}

type Azure struct {
	ConnectionString string `toml:"connection_string"`
}

type Redis struct {
	URL    string `toml:"url"`
	Prefix string `toml:"prefix"`
}

type Config struct {
	Backend         string `toml:"backend"`
	// Collection names the Azure table and the Redis key space. The sqlite
	// schema always uses its own tasks table.
	Collection      string `toml:"collection"`
	DBPath          string `toml:"db_path"`
	DefaultFilter   string `toml:"default_filter"`
	DefaultPriority string `toml:"default_priority"`
	LogPath         string `toml:"log_path"`
	LogLevel        string `toml:"log_level"`
	RequestTimeout  string `toml:"request_timeout"`
	NotifyDuration  string `toml:"notify_duration"`
	Azure           Azure  `toml:"azure"`
	Redis           Redis  `toml:"redis"`
	Keys            Keymap `toml:"keys"`
}

// ResolveConfigPath picks $DUELIST_CONFIG, then the user config dir, then
// the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("DUELIST_CONFIG")); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName, DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

// LoadOrCreate reads the config at path, writing the defaults on first
// launch. Relative paths in the file resolve against the config directory,
// and environment overrides are applied last.
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
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogName
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	cfg = cfg.resolve(path)
	return cfg, cfg.Validate()
}

func (c Config) resolve(path string) Config {
	dir := filepath.Dir(path)
	c.DBPath = relTo(dir, c.DBPath)
	c.LogPath = relTo(dir, c.LogPath)
	applyEnv(&c)
	return c
}

func relTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(dir, p)
}

func applyEnv(c *Config) {
	if v := os.Getenv("DUELIST_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("STORAGE_CONNECTION_STRING"); v != "" {
		c.Azure.ConnectionString = v
	}
	if v := os.Getenv("REDIS_CONNECTION_STRING"); v != "" {
		c.Redis.URL = v
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		c.LogLevel = "debug"
	}
}

// Validate checks the values that are parsed later.
func (c Config) Validate() error {
	if _, err := task.ParseStatusFilter(c.DefaultFilter); err != nil {
		return fmt.Errorf("default_filter: %w", err)
	}
	if _, err := task.ParsePriorityFilter(c.DefaultPriority); err != nil {
		return fmt.Errorf("default_priority: %w", err)
	}
	if _, err := parseDuration(c.RequestTimeout, defaultRequestTimeout); err != nil {
		return fmt.Errorf("request_timeout: %w", err)
	}
	if _, err := parseDuration(c.NotifyDuration, defaultNotifyDuration); err != nil {
		return fmt.Errorf("notify_duration: %w", err)
	}
	return nil
}

func (c Config) StatusFilter() task.StatusFilter {
	f, _ := task.ParseStatusFilter(c.DefaultFilter)
	return f
}

func (c Config) PriorityFilter() task.PriorityFilter {
	f, _ := task.ParsePriorityFilter(c.DefaultPriority)
	return f
}

func (c Config) Timeout() time.Duration {
	d, _ := parseDuration(c.RequestTimeout, defaultRequestTimeout)
	return d
}

func (c Config) NotifyFor() time.Duration {
	d, _ := parseDuration(c.NotifyDuration, defaultNotifyDuration)
	return d
}

// PrefsPath is where the theme preference lives, next to the config file.
func PrefsPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), PrefsFileName)
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, err
	}
	if d <= 0 {
		return def, fmt.Errorf("must be positive, got %s", v)
	}
	return d, nil
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
		Backend:         "sqlite",
		Collection:      DefaultCollection,
		DBPath:          DefaultDBName,
		DefaultFilter:   "all",
		DefaultPriority: "all",
		LogPath:         DefaultLogName,
		LogLevel:        "info",
		RequestTimeout:  defaultRequestTimeout.String(),
		NotifyDuration:  defaultNotifyDuration.String(),
		Redis: Redis{
			Prefix: "duelist",
		},
		Keys: Keymap{
			Quit:           "q",
			Add:            "a",
			Up:             "k",
			Down:           "j",
			Toggle:         " ",
			Delete:         "d",
			Edit:           "e",
			Confirm:        "enter",
			Cancel:         "esc",
			Reload:         "r",
			FilterStatus:   "f",
			FilterPriority: "p",
			Theme:          "t",
			SelectMode:     "v",
			SelectAll:      "A",
			DeleteSelected: "D",
		},
	}
}
