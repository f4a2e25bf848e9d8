package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Addr != nil || cfg.Database.URL != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9000"

[database]
url = "sqlite:///tmp/dmt.db"

[auth]
token-ttl-minutes = 60

[session]
default-duration = 120
stale-after-minutes = 10

[speech]
language = "nl-BE"

[practice]
level = 2
focus-weak = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Addr == nil || *cfg.Server.Addr != ":9000" {
		t.Fatalf("unexpected addr: %v", cfg.Server.Addr)
	}
	if cfg.Session.DefaultDuration == nil || *cfg.Session.DefaultDuration != 120 {
		t.Fatalf("unexpected duration: %v", cfg.Session.DefaultDuration)
	}
	if cfg.Session.SweepIntervalMinutes != nil {
		t.Fatalf("expected unset sweep interval")
	}
	if cfg.Practice.Level == nil || *cfg.Practice.Level != 2 {
		t.Fatalf("unexpected practice level: %v", cfg.Practice.Level)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\naddr ="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestResolvePrecedence(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	addr := ":9000"
	url := "sqlite:///from-file.db"
	ttl := 60
	stale := 10
	file := FileConfig{
		Server:   ServerConfig{Addr: &addr},
		Database: DatabaseConfig{URL: &url},
		Auth:     AuthConfig{TokenTTLMinutes: &ttl},
		Session:  SessionConfig{StaleAfterMinutes: &stale},
	}
	env := map[string]string{
		EnvDatabaseURL:    "postgres://dmt@localhost/dmt",
		EnvDeepgramAPIKey: " key ",
	}
	s, err := Resolve(file, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Addr != ":9000" {
		t.Fatalf("expected file addr, got %q", s.Addr)
	}
	if s.DatabaseURL != "postgres://dmt@localhost/dmt" {
		t.Fatalf("expected env database url, got %q", s.DatabaseURL)
	}
	if s.TokenTTL != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", s.TokenTTL)
	}
	if s.StaleAfter != 10*time.Minute || s.SweepInterval != DefaultSweepIntervalMinutes*time.Minute {
		t.Fatalf("unexpected session timings: %v %v", s.StaleAfter, s.SweepInterval)
	}
	if s.DeepgramAPIKey != "key" {
		t.Fatalf("expected trimmed api key, got %q", s.DeepgramAPIKey)
	}
	if !s.InsecureSecret() || string(s.SigningKey()) != InsecureSecretKey {
		t.Fatalf("expected insecure fallback secret")
	}
}

func TestResolveDefaults(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	s, err := Resolve(FileConfig{}, func(string) string { return "" })
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Addr != DefaultAddr || s.DefaultDuration != DefaultSessionDuration {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if want := filepath.Join(dataHome, "dmt", "dmt.db"); s.DatabaseURL != want {
		t.Fatalf("expected db path %q, got %q", want, s.DatabaseURL)
	}
	if s.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day ttl, got %v", s.TokenTTL)
	}
}

func TestResolveInvalid(t *testing.T) {
	if _, err := Resolve(FileConfig{}, func(k string) string {
		if k == EnvTokenTTL {
			return "soon"
		}
		return ""
	}); err == nil {
		t.Fatalf("expected error for non-numeric ttl")
	}
	zero := 0
	if _, err := Resolve(FileConfig{Session: SessionConfig{DefaultDuration: &zero}}, func(string) string { return "" }); err == nil {
		t.Fatalf("expected error for zero duration")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DMT_TEST_DOTENV=from-file\nDMT_TEST_KEEP=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("DMT_TEST_KEEP", "from-env")
	t.Setenv("DMT_TEST_DOTENV", "")
	if err := os.Unsetenv("DMT_TEST_DOTENV"); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("DMT_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("DMT_TEST_KEEP"); got != "from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should not error: %v", err)
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "dmt", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "dmt", "dmt.db") {
		t.Fatalf("unexpected db path %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/juf")
	if got := XDGConfigHome(); got != filepath.Join("/home/juf", ".config") {
		t.Fatalf("unexpected config home fallback %q", got)
	}
	if got := DefaultDataDir(); got != filepath.Join("/data", "dmt") {
		t.Fatalf("unexpected data dir %q", got)
	}
}
