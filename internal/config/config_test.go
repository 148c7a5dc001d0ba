package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// isolate runs the test from an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Store != StoreFile {
		t.Errorf("store = %q", c.Store)
	}
	if c.APIVersion != "2025-10" || c.Namespace != "$app" || c.Key != "issues" {
		t.Errorf("slot defaults = %+v", c)
	}
	if !c.Localized || c.Autosave || c.LogLevel != "warn" {
		t.Errorf("flags = %+v", c)
	}
	if c.Redis.TTL != time.Minute || c.HTTPTimeout != 10*time.Second {
		t.Errorf("durations = %v %v", c.Redis.TTL, c.HTTPTimeout)
	}
	if c.File != "" {
		t.Errorf("file = %q", c.File)
	}
}

func TestFileWalkUpAndEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(filepath.Join(dir, ".issues"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "shop: demo\nnamespace: custom\nredis:\n  addr: localhost:6379\n  ttl: 5s\n"
	if err := os.WriteFile(filepath.Join(dir, ".issues", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(sub); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ISSUES_NAMESPACE", "fromenv")
	t.Setenv("ISSUES_LOG_LEVEL", "DEBUG")

	c, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Store != StoreShopify || c.Shop != "demo" {
		t.Errorf("store = %q shop = %q", c.Store, c.Shop)
	}
	if c.Namespace != "fromenv" {
		t.Errorf("namespace = %q", c.Namespace)
	}
	if c.Redis.Addr != "localhost:6379" || c.Redis.TTL != 5*time.Second {
		t.Errorf("redis = %+v", c.Redis)
	}
	if c.LogLevel != "debug" {
		t.Errorf("log level = %q", c.LogLevel)
	}
	if filepath.Base(c.File) != "config.yaml" {
		t.Errorf("file = %q", c.File)
	}
}

func TestDotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ISSUES_AUTOSAVE=true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ISSUES_AUTOSAVE", "")
	os.Unsetenv("ISSUES_AUTOSAVE")

	c, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Autosave {
		t.Error("autosave from .env not applied")
	}
}

func TestBinderWins(t *testing.T) {
	isolate(t)
	t.Setenv("ISSUES_STORE", "shopify")
	t.Setenv("ISSUES_SHOP", "demo")
	c, err := Load("", func(v *viper.Viper) error {
		v.Set("store", "file")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Store != StoreFile {
		t.Errorf("store = %q", c.Store)
	}
}

func TestValidate(t *testing.T) {
	isolate(t)
	t.Setenv("ISSUES_STORE", "shopify")
	if _, err := Load("", nil); err == nil {
		t.Error("shopify store without shop should fail")
	}
	t.Setenv("ISSUES_STORE", "s3")
	if _, err := Load("", nil); err == nil {
		t.Error("unknown store should fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("explicit missing file should fail")
	}
}
