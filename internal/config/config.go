// Package config loads settings from flags, ISSUES_* environment variables,
// a .env file and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ISSUES"

	StoreShopify = "shopify"
	StoreFile    = "file"
)

type Redis struct {
	Addr string
	TTL  time.Duration
}

type Config struct {
	Shop             string
	Resource         string
	APIVersion       string
	Endpoint         string
	Token            string
	Store            string
	DataDir          string
	Namespace        string
	Key              string
	EnsureDefinition bool
	Redis            Redis
	BackendURL       string
	Locale           string
	Localized        bool
	Autosave         bool
	LogLevel         string
	Theme            string
	ServerAddr       string
	FeedbackDB       string
	HTTPTimeout      time.Duration

	// File is the config file that was read, empty when none was found.
	File string
}

// Binder attaches command-line flags to v before values are resolved.
type Binder func(v *viper.Viper) error

func setDefaults(v *viper.Viper) {
	v.SetDefault("shop", "")
	v.SetDefault("resource", "")
	v.SetDefault("api-version", "2025-10")
	v.SetDefault("endpoint", "")
	v.SetDefault("token", "")
	v.SetDefault("store", "")
	v.SetDefault("data-dir", "")
	v.SetDefault("namespace", "$app")
	v.SetDefault("key", "issues")
	v.SetDefault("ensure-definition", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl", "60s")
	v.SetDefault("backend-url", "")
	v.SetDefault("locale", "")
	v.SetDefault("localized", true)
	v.SetDefault("autosave", false)
	v.SetDefault("log-level", "warn")
	v.SetDefault("theme", "classic")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("feedback.db", "feedback.db")
	v.SetDefault("http-timeout", "10s")
}

// Locate finds .issues/config.yaml walking up from dir, then falls back to
// the user config directory. It returns "" when nothing exists.
func Locate(dir string) string {
	for d := dir; d != "" && d != filepath.Dir(d); d = filepath.Dir(d) {
		p := filepath.Join(d, ".issues", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if cfgDir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(cfgDir, "issues", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load resolves the configuration. An explicit file must exist; otherwise
// the file is located with Locate from the working directory.
func Load(file string, bind Binder) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file == "" {
		if wd, err := os.Getwd(); err == nil {
			file = Locate(wd)
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	if bind != nil {
		if err := bind(v); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	c := &Config{
		Shop:             v.GetString("shop"),
		Resource:         v.GetString("resource"),
		APIVersion:       v.GetString("api-version"),
		Endpoint:         v.GetString("endpoint"),
		Token:            v.GetString("token"),
		Store:            strings.ToLower(v.GetString("store")),
		DataDir:          v.GetString("data-dir"),
		Namespace:        v.GetString("namespace"),
		Key:              v.GetString("key"),
		EnsureDefinition: v.GetBool("ensure-definition"),
		Redis: Redis{
			Addr: v.GetString("redis.addr"),
			TTL:  v.GetDuration("redis.ttl"),
		},
		BackendURL:  v.GetString("backend-url"),
		Locale:      v.GetString("locale"),
		Localized:   v.GetBool("localized"),
		Autosave:    v.GetBool("autosave"),
		LogLevel:    strings.ToLower(v.GetString("log-level")),
		Theme:       v.GetString("theme"),
		ServerAddr:  v.GetString("server.addr"),
		FeedbackDB:  v.GetString("feedback.db"),
		HTTPTimeout: v.GetDuration("http-timeout"),
		File:        v.ConfigFileUsed(),
	}
	if c.Store == "" {
		c.Store = StoreFile
		if c.Shop != "" || c.Endpoint != "" {
			c.Store = StoreShopify
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreShopify:
		if c.Shop == "" && c.Endpoint == "" {
			return fmt.Errorf("store %q needs shop or endpoint", c.Store)
		}
	case StoreFile:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreShopify, StoreFile)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log-level %q", c.LogLevel)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http-timeout must be positive")
	}
	return nil
}
