package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"homework/internal/config"
	"homework/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	mina       string
	alex       string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("HOMEWORK_BASE_DIR", "")

	cfg := testsupport.NewConfig(t)
	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(filepath.Dir(cfg.Paths.BaseDir), "config.toml"),
		mina:       testsupport.StudentDir(cfg, cfg.Plans.FreeDir, "Mina"),
		alex:       testsupport.StudentDir(cfg, cfg.Plans.PaidDir, "Alex"),
	}

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		testsupport.WritePNG(t, filepath.Join(env.mina, cfg.Selection.CurrentDir, "4과", name), 30, 15)
	}
	testsupport.WritePNG(t, filepath.Join(env.mina, cfg.Selection.PastDir, "2과", "d.png"), 30, 15)
	testsupport.WritePNG(t, filepath.Join(env.alex, cfg.Selection.CurrentDir, "1과", "e.png"), 30, 15)
	testsupport.WriteJSON(t, cfg.QuestionsPath(), []string{"What did you learn today?"})

	writeTestConfig(t, env.configPath, cfg)
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestCLIStudents(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"students"}, env.configPath)
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	requireContains(t, out, "Mina")
	requireContains(t, out, "Alex")

	out, _, err = runCLI(t, []string{"students", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("students --json: %v", err)
	}
	var rows []studentRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rows) != 2 || rows[0].Name != "Alex" || rows[1].Current != 3 || rows[1].Past != 1 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestCLIGenerate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"generate"}, env.configPath)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "generated")

	sheets, err := filepath.Glob(filepath.Join(env.cfg.Paths.OutputDir, "*_Mina.jpeg"))
	if err != nil || len(sheets) != 1 {
		t.Fatalf("expected one sheet for Mina, got %v (%v)", sheets, err)
	}

	out, _, err = runCLI(t, []string{"generate", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	var summary struct {
		Students []struct {
			Student string `json:"student"`
			Outcome string `json:"outcome"`
		} `json:"students"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	for _, s := range summary.Students {
		if s.Outcome != "skipped" {
			t.Fatalf("expected rerun to skip %s, got %s", s.Student, s.Outcome)
		}
	}
}

func TestCLISelectAndLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	folder := filepath.Join(env.mina, env.cfg.Selection.CurrentDir, "4과")

	out, _, err := runCLI(t, []string{"select", folder, "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	requireContains(t, out, "Uses")

	out, _, err = runCLI(t, []string{"ledger", "show", folder, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger show: %v", err)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if len(counts) != 3 || total != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}

	out, _, err = runCLI(t, []string{"ledger", "reset", folder}, env.configPath)
	if err != nil {
		t.Fatalf("ledger reset: %v", err)
	}
	requireContains(t, out, "Reset 3 entries")
	for name, c := range testsupport.ReadLedger(t, filepath.Join(folder, env.cfg.Selection.LedgerFile)) {
		if c != 0 {
			t.Fatalf("%s not reset: %d", name, c)
		}
	}

	out, _, err = runCLI(t, []string{"ledger", "show", filepath.Join(env.mina, env.cfg.Selection.PastDir, "2과")}, env.configPath)
	if err != nil {
		t.Fatalf("ledger show (empty): %v", err)
	}
	requireContains(t, out, "No usage recorded")
}

func TestCLIPitching(t *testing.T) {
	env := setupCLITestEnv(t)
	image := filepath.Join(env.mina, env.cfg.Selection.CurrentDir, "4과", "a.png")

	for _, result := range []string{"pass", "pass", "x"} {
		if _, _, err := runCLI(t, []string{"pitch", "record", "Mina", image, result}, env.configPath); err != nil {
			t.Fatalf("pitch record %s: %v", result, err)
		}
	}
	out, _, err := runCLI(t, []string{"pitch", "undo", "Mina", "4과/a.png"}, env.configPath)
	if err != nil {
		t.Fatalf("pitch undo: %v", err)
	}
	requireContains(t, out, "average 100%")

	out, _, err = runCLI(t, []string{"pitch", "stats", "Mina"}, env.configPath)
	if err != nil {
		t.Fatalf("pitch stats: %v", err)
	}
	requireContains(t, out, "4과/a.png")
	requireContains(t, out, "OO")

	out, _, err = runCLI(t, []string{"pitch", "playlist", "Mina", "4과", "--seed", "3", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("pitch playlist: %v", err)
	}
	var entries []playlistEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(entries) != 3 {
		t.Fatalf("expected the 3 images of 4과, got %+v", entries)
	}

	if _, _, err := runCLI(t, []string{"pitch", "playlist", "Nobody"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown student")
	}
}

func TestCLIDoctor(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Base directory:")
	requireContains(t, out, "[OK]")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
}

func TestConfigValidateListsResolvedSettings(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, env.configPath)
	requireContains(t, out, env.cfg.QuestionsPath())
	requireContains(t, out, "built-in (ASCII only)")

	out, _, err = runCLI(t, []string{"config", "validate", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate --json: %v", err)
	}
	var settings []configSetting
	if err := json.Unmarshal([]byte(out), &settings); err != nil {
		t.Fatalf("decode settings: %v\n%s", err, out)
	}
	found := false
	for _, s := range settings {
		if s.Section == "paths" && s.Key == "base_dir" {
			found = s.Value == env.cfg.Paths.BaseDir
		}
	}
	if !found {
		t.Fatalf("base_dir missing or wrong in %+v", settings)
	}
}

func TestConfigPathAndOverwrite(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if got := strings.TrimSpace(out); got != env.configPath {
		t.Fatalf("config path = %q, want %q", got, env.configPath)
	}

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "stale" || !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample config not written:\n%s", data)
	}
}
