package preflight

import (
	"homework/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	// Optional marks checks whose failure does not block generation.
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// Blocking reports whether the result should stop a batch run.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Optional
}

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Base directory", cfg.Paths.BaseDir),
	}
	if cfg.Paths.OutputDir != cfg.Paths.BaseDir {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.Plans.FreeDir != "" {
		results = append(results, CheckPlanDirectory("Free plan", cfg.PlanDir(cfg.Plans.FreeDir)))
	}
	if cfg.Plans.PaidDir != "" {
		results = append(results, CheckPlanDirectory("Paid plan", cfg.PlanDir(cfg.Plans.PaidDir)))
	}
	if cfg.Plans.PaidQuestion {
		results = append(results, CheckQuestionBank(cfg.QuestionsPath()))
	}
	results = append(results, CheckFont(cfg.Render.FontPath))
	return results
}

// Blocking returns the results that should stop a batch run.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Blocking() {
			out = append(out, r)
		}
	}
	return out
}
