package main

import (
	"path/filepath"
	"testing"

	"homework/internal/catalog"
	"homework/internal/testsupport"
)

func TestExpandCandidatesAbsolutePaths(t *testing.T) {
	root := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(root, "4과", "a.png"), 4, 4)
	t.Chdir(root)

	enum := catalog.NewEnumerator(nil, "", nil)
	got, err := expandCandidates(enum, []string{".", "./4과/a.png"})
	if err != nil {
		t.Fatalf("expandCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the folder image and the file argument, got %v", got)
	}
	for _, p := range got {
		if !filepath.IsAbs(p) {
			t.Fatalf("expected absolute path, got %q", p)
		}
	}
	if got[0] != got[1] {
		t.Fatalf("both spellings must resolve to one path, got %v", got)
	}
}

func TestCLISelectCollapsesTwoSpellings(t *testing.T) {
	env := setupCLITestEnv(t)
	folder := filepath.Join(env.mina, env.cfg.Selection.CurrentDir, "4과")
	t.Chdir(folder)

	if _, _, err := runCLI(t, []string{"select", ".", "./a.png", "-n", "4"}, env.configPath); err != nil {
		t.Fatalf("select: %v", err)
	}
	counts := testsupport.ReadLedger(t, filepath.Join(folder, env.cfg.Selection.LedgerFile))
	for name, c := range counts {
		if c != 1 {
			t.Fatalf("%s counted %d times", name, c)
		}
	}
}
