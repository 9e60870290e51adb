package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/nightshift/internal/constants"
)

// Config is the optional config.yaml, overridable from the environment
type Config struct {
	// Backend is one of sqlite, json or keyring
	Backend string `yaml:"backend"`
	// Store is the database or document path for file backends
	Store string `yaml:"store,omitempty"`
	Debug bool   `yaml:"debug"`
	// MetricsFile, when set, receives Prometheus text metrics after each evaluation
	MetricsFile string `yaml:"metrics_file,omitempty"`

	// Dir is the directory config.yaml was looked up in
	Dir string `yaml:"-"`
}

// Default returns the configuration used when no file exists
func Default(dir string) Config {
	return Config{
		Backend: constants.BackendSQLite,
		Dir:     dir,
	}
}

// Load reads dir/config.yaml and dir/.env. Both are optional. Precedence is
// environment, then file, then defaults.
func Load(dir string) (Config, error) {
	dir = ExpandHome(dir)
	cfg := Default(dir)

	// Existing environment variables win over .env entries
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, constants.DefaultConfigFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.Dir = dir
	return cfg, cfg.normalize()
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(constants.EnvBackend); ok && v != "" {
		c.Backend = v
	}
	if v, ok := os.LookupEnv(constants.EnvStore); ok && v != "" {
		c.Store = v
	}
	if v, ok := os.LookupEnv(constants.EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, v, err)
		}
		c.Debug = debug
	}
	return nil
}

func (c *Config) normalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = constants.BackendSQLite
	case constants.BackendSQLite, constants.BackendJSON, constants.BackendKeyring:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, json or keyring)", c.Backend)
	}

	if c.Store == "" {
		c.Store = c.defaultStore()
	}
	c.Store = ExpandHome(c.Store)
	c.MetricsFile = ExpandHome(c.MetricsFile)
	return nil
}

func (c *Config) defaultStore() string {
	switch c.Backend {
	case constants.BackendJSON:
		return filepath.Join(c.Dir, "prefs.json")
	case constants.BackendKeyring:
		return ""
	default:
		return filepath.Join(c.Dir, constants.DefaultStoreFile)
	}
}

// LockPath is where the daemon's single-owner lockfile lives
func (c *Config) LockPath() string {
	return filepath.Join(c.Dir, constants.LockfileName)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// WriteDefault saves cfg as config.yaml in its directory unless a config file
// is already there. It reports whether a file was written.
func WriteDefault(cfg Config) (bool, error) {
	path := filepath.Join(cfg.Dir, constants.DefaultConfigFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
