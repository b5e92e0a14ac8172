package pitching

import (
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of one attempt.
type Result string

const (
	ResultPass Result = "pass"
	ResultFail Result = "fail"
)

// ParseResult accepts pass/fail as well as the O/X shorthand.
func ParseResult(value string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pass", "o", "ok", "y":
		return ResultPass, nil
	case "fail", "x", "n":
		return ResultFail, nil
	default:
		return "", fmt.Errorf("unknown result %q (want pass or fail)", value)
	}
}

func (r Result) symbol() byte {
	if r == ResultPass {
		return 'O'
	}
	return 'X'
}

func decodeRecent(s string) []Result {
	out := make([]Result, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 'O' {
			out = append(out, ResultPass)
		} else {
			out = append(out, ResultFail)
		}
	}
	return out
}

func encodeRecent(results []Result) string {
	b := make([]byte, len(results))
	for i, r := range results {
		b[i] = r.symbol()
	}
	return string(b)
}

// Stat is the drill history of one image for one student.
type Stat struct {
	Student        string    `json:"student"`
	ImageKey       string    `json:"image_key"`
	TotalAttempts  int       `json:"total_attempts"`
	Recent         []Result  `json:"recent_history"`
	BattingAverage float64   `json:"batting_average"`
	LastPlayed     time.Time `json:"last_played,omitzero"`
	LastSession    string    `json:"last_session,omitempty"`
}

// Grade returns the band for this stat's batting average.
func (s Stat) Grade() Grade {
	return GradeFor(s.BattingAverage)
}

// Average is the pass ratio of recent rounded to two decimals; zero when
// recent is empty.
func Average(recent []Result) float64 {
	if len(recent) == 0 {
		return 0
	}
	passes := 0
	for _, r := range recent {
		if r == ResultPass {
			passes++
		}
	}
	return math.Round(float64(passes)/float64(len(recent))*100) / 100
}

// Grade buckets a batting average.
type Grade string

const (
	GradeHigh Grade = "high"
	GradeMid  Grade = "mid"
	GradeLow  Grade = "low"
)

// GradeFor maps avg to high (>= 0.8), low (< 0.5) or mid.
func GradeFor(avg float64) Grade {
	switch {
	case avg >= 0.8:
		return GradeHigh
	case avg < 0.5:
		return GradeLow
	default:
		return GradeMid
	}
}

// ImageKey identifies a screenshot by its chapter folder and file name.
func ImageKey(path string) string {
	chapter := filepath.Base(filepath.Dir(path))
	return norm.NFC.String(chapter + "/" + filepath.Base(path))
}

// Playlist returns a shuffled copy of items.
func Playlist(items []string, rnd *rand.Rand) []string {
	out := append([]string(nil), items...)
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
