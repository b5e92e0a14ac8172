package testsupport

import (
	"path/filepath"
	"testing"

	"homework/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The base directory holds the plan folders and question files; state and
// logs live beside it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.BaseDir = filepath.Join(root, "base")
	cfgVal.Paths.OutputDir = cfgVal.Paths.BaseDir
	cfgVal.Paths.StateDir = filepath.Join(root, "state")
	cfgVal.Paths.LogDir = filepath.Join(root, "state", "logs")
	cfgVal.Pitching.DBPath = filepath.Join(root, "state", "pitching.db")

	builder := &configBuilder{
		t:       t,
		baseDir: root,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOutputDir writes homework sheets to a separate directory.
func WithOutputDir(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = filepath.Join(b.baseDir, name)
	}
}

// WithTargets overrides the per-plan daily targets.
func WithTargets(freeCurrent, freePast, paidCurrent, paidPast int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plans.FreeCurrent = freeCurrent
		b.cfg.Plans.FreePast = freePast
		b.cfg.Plans.PaidCurrent = paidCurrent
		b.cfg.Plans.PaidPast = paidPast
	}
}

// WithoutQuestions disables the paid-plan question box.
func WithoutQuestions() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plans.PaidQuestion = false
	}
}

// StudentDir returns the folder of a student under the given plan folder name.
func StudentDir(cfg *config.Config, planDir, student string) string {
	return filepath.Join(cfg.PlanDir(planDir), student)
}
