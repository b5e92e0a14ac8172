// Package roster discovers students from the plan folders.
//
// Each plan folder holds one subdirectory per student; hidden entries and
// plain files are ignored. A plan folder that does not exist contributes no
// students.
package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"homework/internal/config"
)

// Plan is the subscription tier a student belongs to.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

// ParsePlan maps a user-supplied string onto a Plan.
func ParsePlan(value string) (Plan, error) {
	switch Plan(strings.ToLower(strings.TrimSpace(value))) {
	case PlanFree:
		return PlanFree, nil
	case PlanPaid:
		return PlanPaid, nil
	default:
		return "", fmt.Errorf("unknown plan %q (want free or paid)", value)
	}
}

// Student is one student folder.
type Student struct {
	Name string
	Plan Plan
	Dir  string
}

// Targets is how much homework a plan gets per day.
type Targets struct {
	Current  int
	Past     int
	Question bool
}

// TargetsFor returns the configured daily targets for plan.
func TargetsFor(cfg *config.Config, plan Plan) Targets {
	if plan == PlanPaid {
		return Targets{Current: cfg.Plans.PaidCurrent, Past: cfg.Plans.PaidPast, Question: cfg.Plans.PaidQuestion}
	}
	return Targets{Current: cfg.Plans.FreeCurrent, Past: cfg.Plans.FreePast}
}

// Dirs returns the plan folders configured in cfg, resolved against the base directory.
func Dirs(cfg *config.Config) map[Plan]string {
	dirs := make(map[Plan]string, 2)
	if cfg.Plans.FreeDir != "" {
		dirs[PlanFree] = cfg.PlanDir(cfg.Plans.FreeDir)
	}
	if cfg.Plans.PaidDir != "" {
		dirs[PlanPaid] = cfg.PlanDir(cfg.Plans.PaidDir)
	}
	return dirs
}

// Collect lists the students of every plan folder, sorted by name then plan.
func Collect(planDirs map[Plan]string) []Student {
	var students []Student
	for plan, dir := range planDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !entry.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			students = append(students, Student{
				Name: norm.NFC.String(name),
				Plan: plan,
				Dir:  filepath.Join(dir, name),
			})
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].Plan < students[j].Plan
	})
	return students
}

// Find returns the student named name. When the name exists under both plans
// the free plan entry wins unless plan is set.
func Find(students []Student, name string, plan Plan) (Student, bool) {
	name = norm.NFC.String(strings.TrimSpace(name))
	for _, s := range students {
		if s.Name != name {
			continue
		}
		if plan == "" || s.Plan == plan {
			return s, true
		}
	}
	return Student{}, false
}
