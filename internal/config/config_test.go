package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"homework/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("HOMEWORK_BASE_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantBase := filepath.Join(tempHome, "Homework-Generation")
	if cfg.Paths.BaseDir != wantBase {
		t.Fatalf("unexpected base dir: got %q want %q", cfg.Paths.BaseDir, wantBase)
	}
	if cfg.Paths.OutputDir != wantBase {
		t.Fatalf("expected output dir to default to base dir, got %q", cfg.Paths.OutputDir)
	}
	wantDB := filepath.Join(tempHome, ".local", "share", "homework", "pitching.db")
	if cfg.Pitching.DBPath != wantDB {
		t.Fatalf("unexpected pitching db path: got %q want %q", cfg.Pitching.DBPath, wantDB)
	}
	if cfg.Selection.LedgerFile != "usage_history.json" {
		t.Fatalf("unexpected ledger file: %q", cfg.Selection.LedgerFile)
	}
	if cfg.Plans.FreeCurrent != 4 || cfg.Plans.FreePast != 2 {
		t.Fatalf("unexpected free targets: %d+%d", cfg.Plans.FreeCurrent, cfg.Plans.FreePast)
	}
	if cfg.Plans.PaidCurrent != 4 || cfg.Plans.PaidPast != 1 || !cfg.Plans.PaidQuestion {
		t.Fatalf("unexpected paid plan: %+v", cfg.Plans)
	}
	if cfg.Pitching.Window != 5 {
		t.Fatalf("unexpected pitching window: %d", cfg.Pitching.Window)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "homework.toml")

	type payload struct {
		Paths struct {
			BaseDir string `toml:"base_dir"`
		} `toml:"paths"`
		Plans struct {
			FreeDir     string `toml:"free_dir"`
			FreeCurrent int    `toml:"free_current"`
		} `toml:"plans"`
		Selection struct {
			Extensions []string `toml:"extensions"`
		} `toml:"selection"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.BaseDir = filepath.Join(tempDir, "base")
	custom.Plans.FreeDir = "Free"
	custom.Plans.FreeCurrent = 3
	custom.Selection.Extensions = []string{"PNG", ".Jpg", "png", " "}
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HOMEWORK_BASE_DIR", "")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Plans.FreeCurrent != 3 {
		t.Fatalf("unexpected free current: %d", cfg.Plans.FreeCurrent)
	}
	if got := cfg.PlanDir(cfg.Plans.FreeDir); got != filepath.Join(tempDir, "base", "Free") {
		t.Fatalf("unexpected plan dir: %q", got)
	}
	if strings.Join(cfg.Selection.Extensions, ",") != ".png,.jpg" {
		t.Fatalf("unexpected normalized extensions: %v", cfg.Selection.Extensions)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
	if cfg.QuestionsPath() != filepath.Join(tempDir, "base", "questions.json") {
		t.Fatalf("unexpected questions path: %q", cfg.QuestionsPath())
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestBaseDirEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base := t.TempDir()
	t.Setenv("HOMEWORK_BASE_DIR", base)
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.BaseDir != base {
		t.Fatalf("expected env base dir %q, got %q", base, cfg.Paths.BaseDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative target", func(c *config.Config) { c.Plans.PaidPast = -1 }, "plans.paid_past"},
		{"ledger path", func(c *config.Config) { c.Selection.LedgerFile = "nested/usage.json" }, "selection.ledger_file"},
		{"window", func(c *config.Config) { c.Pitching.Window = -2 }, "pitching.window"},
		{"no plans", func(c *config.Config) { c.Plans.FreeDir = ""; c.Plans.PaidDir = "" }, "plans.free_dir"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HOMEWORK_BASE_DIR", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Selection.ExcludeMarker != "보류" {
		t.Fatalf("unexpected exclude marker: %q", cfg.Selection.ExcludeMarker)
	}
}
