// Package config loads pocketapps settings from defaults, a TOML file,
// the environment and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort         = "8080"
	DefaultDataDir      = "./data"
	DefaultBackend      = BackendJSON
	DefaultTasksFile    = "todo.json"
	DefaultContactsFile = "contacts.json"
	DefaultDBFile       = "pocketapps.db"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	// ConfigEnv names the config file when -config is not given.
	ConfigEnv = "POCKETAPPS_CONFIG"
)

// Config holds the server settings.
type Config struct {
	Port         string `toml:"port"`
	DataDir      string `toml:"data_dir"`
	Backend      string `toml:"backend"`       // "json" or "sqlite"
	TasksFile    string `toml:"tasks_file"`    // relative paths resolve against DataDir
	ContactsFile string `toml:"contacts_file"` // relative paths resolve against DataDir
	DBPath       string `toml:"db_path"`
	StableIDs    bool   `toml:"stable_ids"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `toml:"-"`
}

func setDefaults(cfg *Config) {
	cfg.Port = DefaultPort
	cfg.DataDir = DefaultDataDir
	cfg.Backend = DefaultBackend
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// Load builds the configuration. getenv is usually os.Getenv.
func Load(fs *flag.FlagSet, args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	path := configPathFromArgs(args)
	if path == "" {
		path = getenv(ConfigEnv)
	}
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
	}

	if err := loadFromEnv(cfg, getenv); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("POCKETAPPS_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := getenv("POCKETAPPS_STABLE_IDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid POCKETAPPS_STABLE_IDS %q: %w", v, err)
		}
		cfg.StableIDs = b
	}
	return nil
}

// parseFlags registers the flags on fs with the values loaded so far as
// defaults, so only flags given on the command line change anything.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	var configFile string
	fs.StringVar(&configFile, "config", cfg.ConfigFile, "path to a TOML config file (env "+ConfigEnv+")")
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding the store files")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: json or sqlite")
	fs.StringVar(&cfg.TasksFile, "tasks-file", cfg.TasksFile, "task file (json backend)")
	fs.StringVar(&cfg.ContactsFile, "contacts-file", cfg.ContactsFile, "contact file (json backend)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "database path (sqlite backend)")
	fs.BoolVar(&cfg.StableIDs, "stable-ids", cfg.StableIDs, "never renumber task ids")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text, json or logfmt")
	return fs.Parse(args)
}

func finalizeConfig(cfg *Config) error {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q: must be %q or %q", cfg.Backend, BackendJSON, BackendSQLite)
	}

	if cfg.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if cfg.TasksFile == "" {
		cfg.TasksFile = DefaultTasksFile
	}
	if cfg.ContactsFile == "" {
		cfg.ContactsFile = DefaultContactsFile
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBFile
	}
	cfg.TasksFile = resolve(cfg.DataDir, cfg.TasksFile)
	cfg.ContactsFile = resolve(cfg.DataDir, cfg.ContactsFile)
	cfg.DBPath = resolve(cfg.DataDir, cfg.DBPath)
	return nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// configPathFromArgs finds -config before the flag set is built, since the
// file's values become the flag defaults.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// EnsureDataDir creates the directories the stores write into.
func (c *Config) EnsureDataDir() error {
	dirs := []string{c.DataDir}
	if c.Backend == BackendSQLite {
		dirs = append(dirs, filepath.Dir(c.DBPath))
	} else {
		dirs = append(dirs, filepath.Dir(c.TasksFile), filepath.Dir(c.ContactsFile))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
