package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/dmt/internal/config"
	"github.com/verte-zerg/dmt/internal/model"
)

func TestDefaultConfigTemplateParsesWhenUncommented(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Addr == nil || *cfg.Server.Addr != config.DefaultAddr {
		t.Fatalf("unexpected server addr: %v", cfg.Server.Addr)
	}
	if cfg.Session.DefaultDuration == nil || *cfg.Session.DefaultDuration != config.DefaultSessionDuration {
		t.Fatalf("unexpected default duration: %v", cfg.Session.DefaultDuration)
	}
	if cfg.Practice.Words == nil || *cfg.Practice.Words != defaultWords {
		t.Fatalf("unexpected practice words: %v", cfg.Practice.Words)
	}
	if cfg.Practice.WeakFactor == nil || *cfg.Practice.WeakFactor != defaultWeakFactor {
		t.Fatalf("unexpected weak factor: %v", cfg.Practice.WeakFactor)
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var words, level int
	cmd.Flags().IntVar(&words, "words", defaultWords, "")
	cmd.Flags().IntVar(&level, "level", defaultLevel, "")
	if err := cmd.Flags().Parse([]string{"--words", "40"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	fileWords, fileLevel := 80, 2
	applyIntConfig(cmd, "words", &words, &fileWords)
	applyIntConfig(cmd, "level", &level, &fileLevel)
	if words != 40 {
		t.Fatalf("expected flag value to win, got %d", words)
	}
	if level != 2 {
		t.Fatalf("expected config value for unset flag, got %d", level)
	}

	addr := ":8000"
	applyStringFlag(cmd, "words", &addr, ":9000")
	if addr != ":9000" {
		t.Fatalf("expected changed flag to override, got %q", addr)
	}
	applyStringFlag(cmd, "level", &addr, ":1")
	if addr != ":9000" {
		t.Fatalf("expected unchanged flag to be ignored, got %q", addr)
	}
}

func TestValidatePracticeConfig(t *testing.T) {
	valid := model.PracticeConfig{Level: 1, Words: 10, DurationSeconds: 60}
	if err := validatePracticeConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cases := []model.PracticeConfig{
		{Level: 4, Words: 10, DurationSeconds: 60},
		{Level: 1, Words: 0, DurationSeconds: 60},
		{Level: 1, Words: 10, DurationSeconds: 0},
		{Level: 1, Words: 10, DurationSeconds: 60, WeakFactor: -1},
	}
	for i, cfg := range cases {
		if err := validatePracticeConfig(cfg); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, cfg)
		}
	}
}

func TestEnsureDBDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dmt.db")
	if err := ensureDBDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("expected directory to exist: %v", err)
	}
	if err := ensureDBDir("postgres://dmt@localhost/dmt"); err != nil {
		t.Fatalf("expected urls to be skipped: %v", err)
	}
}
