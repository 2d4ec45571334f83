package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is read-only after Load returns.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Remote  RemoteConfig  `yaml:"remote"`
	JWT     JWTConfig     `yaml:"jwt"`
	Session SessionConfig `yaml:"session"`
	CORS    CORSConfig    `yaml:"cors"`
	Stories StoriesConfig `yaml:"stories"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	SecureCookies   bool     `yaml:"secure_cookies"`
}

// RemoteConfig points at the remote story service.
type RemoteConfig struct {
	BaseURL  string   `yaml:"base_url"`
	Timeout  Duration `yaml:"timeout"`
	RetryMax int      `yaml:"retry_max"`
}

type JWTConfig struct {
	Secret     string   `yaml:"-"` // env-only, never in YAML
	Expiration Duration `yaml:"expiration"`
}

type SessionConfig struct {
	CleanupInterval Duration `yaml:"cleanup_interval"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type StoriesConfig struct {
	DeleteRemote  bool     `yaml:"delete_remote"`
	ImportLimit   int      `yaml:"import_limit"`
	ImportTimeout Duration `yaml:"import_timeout"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Duration is a time.Duration that reads from YAML strings like "15s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads configuration with precedence: defaults, YAML file, env vars.
// The file path comes from SNOOZE_CONFIG_PATH; a missing file is not an error.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("SNOOZE_CONFIG_PATH", "config/snooze.yaml")
	if err := loadYAMLFile(cfg, configPath, false); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile is Load with an explicit path that must exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()
	if err := loadYAMLFile(cfg, path, true); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(15 * time.Second),
			IdleTimeout:     Duration(60 * time.Second),
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Remote: RemoteConfig{
			BaseURL:  "https://hack-or-snooze-v3.herokuapp.com",
			Timeout:  Duration(15 * time.Second),
			RetryMax: 2,
		},
		JWT: JWTConfig{
			Expiration: Duration(24 * time.Hour),
		},
		Session: SessionConfig{
			CleanupInterval: Duration(1 * time.Hour),
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Stories: StoriesConfig{
			DeleteRemote:  true,
			ImportLimit:   25,
			ImportTimeout: Duration(15 * time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func loadYAMLFile(cfg *Config, path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides lets non-empty SNOOZE_* variables win over the file.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("SNOOZE_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("SNOOZE_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}
	if v := os.Getenv("SNOOZE_SECURE_COOKIES"); v != "" {
		cfg.Server.SecureCookies = v == "true" || v == "1"
	}

	// Remote
	if v := os.Getenv("SNOOZE_REMOTE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("SNOOZE_REMOTE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Remote.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("SNOOZE_REMOTE_RETRY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Remote.RetryMax = n
		}
	}

	// JWT
	if v := os.Getenv("SNOOZE_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("SNOOZE_JWT_EXPIRATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.Expiration = Duration(d)
		}
	}

	// CORS
	if v := os.Getenv("SNOOZE_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowOrigins = origins
	}

	// Stories
	if v := os.Getenv("SNOOZE_DELETE_REMOTE"); v != "" {
		cfg.Stories.DeleteRemote = v == "true" || v == "1"
	}
	if v := os.Getenv("SNOOZE_IMPORT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Stories.ImportLimit = n
		}
	}

	// Log
	if v := os.Getenv("SNOOZE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SNOOZE_LOG_DEVELOPMENT"); v != "" {
		cfg.Log.Development = v == "true" || v == "1"
	}
}

// validate checks required values. SNOOZE_DEV_MODE=true allows a missing
// JWT secret and substitutes a fixed development one.
func (c *Config) validate() error {
	if c.Remote.BaseURL == "" {
		return errors.New("remote.base_url is required")
	}
	if c.Stories.ImportLimit <= 0 {
		return fmt.Errorf("stories.import_limit must be positive, got %d", c.Stories.ImportLimit)
	}
	if c.Session.CleanupInterval <= 0 {
		return errors.New("session.cleanup_interval must be positive")
	}
	if len(c.CORS.AllowOrigins) == 0 {
		return errors.New("cors.allow_origins must not be empty")
	}
	if c.JWT.Secret == "" {
		if os.Getenv("SNOOZE_DEV_MODE") != "true" {
			return errors.New("SNOOZE_JWT_SECRET is required")
		}
		c.JWT.Secret = "snooze-dev-secret"
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
