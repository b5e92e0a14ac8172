package homework

import (
	"strconv"
	"strings"
	"time"

	"homework/internal/roster"
)

// Outcome is what happened to one student in a run.
type Outcome string

const (
	OutcomeGenerated Outcome = "generated"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// StudentResult reports one student's outcome.
type StudentResult struct {
	Student  string      `json:"student"`
	Plan     roster.Plan `json:"plan"`
	Outcome  Outcome     `json:"outcome"`
	Reason   string      `json:"reason,omitempty"`
	Output   string      `json:"output,omitempty"`
	Current  int         `json:"current"`
	Past     int         `json:"past"`
	Question bool        `json:"question"`
	Err      error       `json:"-"`
}

// Tag summarizes the sheet contents, for example "current4+past1+question".
func (r StudentResult) Tag() string {
	var parts []string
	if r.Current > 0 {
		parts = append(parts, "current"+strconv.Itoa(r.Current))
	}
	if r.Past > 0 {
		parts = append(parts, "past"+strconv.Itoa(r.Past))
	}
	if r.Question {
		parts = append(parts, "question")
	}
	return strings.Join(parts, "+")
}

// Summary is the outcome of a batch run.
type Summary struct {
	Date     time.Time       `json:"date"`
	Students []StudentResult `json:"students"`
}

// Count returns how many students ended with outcome.
func (s Summary) Count(outcome Outcome) int {
	n := 0
	for _, r := range s.Students {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}
