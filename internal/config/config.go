package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultBaseURL = "http://127.0.0.1:8000"

// Config holds runtime settings for the CLI app.
type Config struct {
	BaseURL   string `toml:"base_url"`
	SessionID string `toml:"session_id"`
	CSRFToken string `toml:"csrf_token"`
	UserID    int64  `toml:"user_id"`
	Username  string `toml:"username"`
	DBPath    string `toml:"db_path"`
	LogPath   string `toml:"log_path"`
	LogLevel  string `toml:"log_level"`
	StartPath string `toml:"start_path"`
}

// LoadFromEnv reads the optional file named by NETWORK_CONFIG, then lets
// NETWORK_* environment variables override it.
func LoadFromEnv() (Config, error) {
	cfg := Config{}
	if path := os.Getenv("NETWORK_CONFIG"); path != "" {
		fileCfg, err := Read(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	overrideString(&cfg.BaseURL, "NETWORK_BASE_URL")
	overrideString(&cfg.SessionID, "NETWORK_SESSION_ID")
	overrideString(&cfg.CSRFToken, "NETWORK_CSRF_TOKEN")
	overrideString(&cfg.Username, "NETWORK_USERNAME")
	overrideString(&cfg.DBPath, "NETWORK_DB_PATH")
	overrideString(&cfg.LogPath, "NETWORK_LOG_PATH")
	overrideString(&cfg.LogLevel, "NETWORK_LOG_LEVEL")
	overrideString(&cfg.StartPath, "NETWORK_START_PATH")
	if raw := os.Getenv("NETWORK_USER_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("NETWORK_USER_ID must be a number: %s", raw)
		}
		cfg.UserID = id
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Read decodes a TOML config file. Defaults are not applied.
func Read(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.DBPath == "" {
		c.DBPath = "network.db"
	}
	if c.LogPath == "" {
		c.LogPath = "network.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

func (c Config) LoggedIn() bool {
	return c.SessionID != ""
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("BaseURL is required")
	}
	if c.BaseURL[len(c.BaseURL)-1] == '/' {
		return fmt.Errorf("BaseURL must not end with '/': %s", c.BaseURL)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("BaseURL is not a valid URL: %s", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BaseURL must use http or https: %s", c.BaseURL)
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if c.LogPath == "" {
		return errors.New("LogPath is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LogLevel must be debug, info, warn or error: %s", c.LogLevel)
	}
	if c.LoggedIn() {
		if c.UserID <= 0 {
			return errors.New("NETWORK_USER_ID is required with NETWORK_SESSION_ID")
		}
		if c.CSRFToken == "" {
			return errors.New("NETWORK_CSRF_TOKEN is required with NETWORK_SESSION_ID")
		}
	}
	return nil
}
