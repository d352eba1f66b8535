package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName  = "ignitegym"
	ConfigFileName = "config.json"

	DefaultAPIURL = "http://localhost:3333"
)

// Token store backends
const (
	TokenStoreKeyring = "keyring"
	TokenStoreFile    = "file"
)

// Environment overrides
const (
	EnvConfigDir  = "IGNITEGYM_CONFIG_DIR"
	EnvAPIURL     = "IGNITEGYM_API_URL"
	EnvTokenStore = "IGNITEGYM_TOKEN_STORE"
	EnvLogLevel   = "IGNITEGYM_LOG_LEVEL"
)

// Config represents the user's local configuration stored in ~/.config/ignitegym/config.json
type Config struct {
	APIURL     string `json:"api_url"`
	TokenStore string `json:"token_store"`
	LogLevel   string `json:"log_level"`

	// dir is where the config and session files live
	dir string
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		APIURL:     DefaultAPIURL,
		TokenStore: TokenStoreKeyring,
		LogLevel:   "warn",
	}
}

// Dir returns the config directory, honoring IGNITEGYM_CONFIG_DIR
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName), nil
}

// Load reads the config file (if any) over the defaults, then applies
// environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvTokenStore); v != "" {
		cfg.TokenStore = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config file over the defaults without environment
// overrides or validation. It is the starting point for Save.
func LoadFile() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.dir = dir

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// If config doesn't exist, keep defaults
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration file
func Save(cfg *Config) error {
	dir := cfg.dir
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			return err
		}
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the API URL and token store values
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: expected http(s)://host[:port]", c.APIURL)
	}

	switch c.TokenStore {
	case TokenStoreKeyring, TokenStoreFile:
	default:
		return fmt.Errorf("invalid token_store %q: expected %q or %q", c.TokenStore, TokenStoreKeyring, TokenStoreFile)
	}
	return nil
}

// Dir returns the directory the config was loaded from
func (c *Config) Dir() string {
	return c.dir
}

// SessionFile is where the serialized user record (and, with the file
// token store, the token) is kept. Each API host gets its own file, like
// its own keyring entry, so a user record never pairs with another host's
// token.
func (c *Config) SessionFile() string {
	return filepath.Join(c.dir, "session-"+fileSafe(c.Scope())+".json")
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(s))
}

// Scope identifies the API host, so that credentials for different hosts
// are stored separately.
func (c *Config) Scope() string {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return c.APIURL
	}
	return strings.ToLower(u.Host)
}
