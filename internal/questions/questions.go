// Package questions hands out open-ended questions to paid-plan students.
//
// A student's own custom_questions.json queue is drained first, front to
// back. After that, questions come from the shared bank at random, never
// repeating one the student has already been asked. Every question handed out
// is appended to the asked history, keyed by student name.
package questions

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"homework/internal/fileutil"
	"homework/internal/logging"
)

// DefaultCustomFile is the per-student queue file name.
const DefaultCustomFile = "custom_questions.json"

// ErrNoQuestions reports that every bank question has been asked already.
var ErrNoQuestions = errors.New("no available questions")

// Picker chooses the next question for a student.
type Picker struct {
	questionsPath string
	askedPath     string
	customFile    string
	rnd           *rand.Rand
	logger        *slog.Logger
}

// Option customizes a Picker.
type Option func(*Picker)

// WithRand sets the random source used to pick from the bank.
func WithRand(r *rand.Rand) Option {
	return func(p *Picker) {
		if r != nil {
			p.rnd = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Picker) {
		p.logger = logger
	}
}

// WithCustomFile overrides the per-student queue file name.
func WithCustomFile(name string) Option {
	return func(p *Picker) {
		if name = strings.TrimSpace(name); name != "" {
			p.customFile = name
		}
	}
}

// NewPicker builds a picker over the question bank and asked history files.
func NewPicker(questionsPath, askedPath string, opts ...Option) *Picker {
	p := &Picker{
		questionsPath: questionsPath,
		askedPath:     askedPath,
		customFile:    DefaultCustomFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p.logger = logging.NewComponentLogger(p.logger, "questions")
	return p
}

// CustomPath returns the queue file location inside studentDir.
func (p *Picker) CustomPath(studentDir string) string {
	return filepath.Join(studentDir, p.customFile)
}

// Next returns the question for student and records it as asked.
func (p *Picker) Next(student, studentDir string) (string, error) {
	asked, err := p.Asked()
	if err != nil {
		return "", err
	}

	question, fromQueue, err := p.popCustom(studentDir)
	if err != nil {
		return "", err
	}
	if !fromQueue {
		question, err = p.pickFromBank(asked[student])
		if err != nil {
			return "", err
		}
	}

	asked[student] = append(asked[student], question)
	if err := fileutil.WriteJSONAtomic(p.askedPath, asked); err != nil {
		return "", fmt.Errorf("record asked question: %w", err)
	}

	p.logger.Debug("question chosen",
		logging.String(logging.FieldStudent, student),
		logging.Bool("custom", fromQueue))
	return question, nil
}

// Ready reports whether Next can run for the student without writing
// anything: the asked history and custom queue must parse and, when the queue
// is empty, the bank must exist. An exhausted bank is not an error here.
func (p *Picker) Ready(studentDir string) error {
	if _, err := p.Asked(); err != nil {
		return err
	}
	if studentDir != "" {
		var queue []string
		found, err := fileutil.ReadJSON(p.CustomPath(studentDir), &queue)
		if err != nil {
			return fmt.Errorf("load custom questions: %w", err)
		}
		if found && len(queue) > 0 {
			return nil
		}
	}
	_, err := p.bank()
	return err
}

// Asked returns the asked history keyed by student.
func (p *Picker) Asked() (map[string][]string, error) {
	asked := map[string][]string{}
	if _, err := fileutil.ReadJSON(p.askedPath, &asked); err != nil {
		return nil, fmt.Errorf("load asked questions: %w", err)
	}
	if asked == nil {
		asked = map[string][]string{}
	}
	return asked, nil
}

// Remaining counts the bank questions student has not been asked yet.
func (p *Picker) Remaining(student string) (int, error) {
	asked, err := p.Asked()
	if err != nil {
		return 0, err
	}
	bank, err := p.bank()
	if err != nil {
		return 0, err
	}
	return len(unasked(bank, asked[student])), nil
}

func (p *Picker) popCustom(studentDir string) (string, bool, error) {
	if studentDir == "" {
		return "", false, nil
	}
	path := p.CustomPath(studentDir)
	var queue []string
	found, err := fileutil.ReadJSON(path, &queue)
	if err != nil {
		return "", false, fmt.Errorf("load custom questions: %w", err)
	}
	if !found || len(queue) == 0 {
		return "", false, nil
	}
	question := queue[0]
	rest := append([]string{}, queue[1:]...)
	if err := fileutil.WriteJSONAtomic(path, rest); err != nil {
		return "", false, fmt.Errorf("update custom questions: %w", err)
	}
	return question, true, nil
}

func (p *Picker) pickFromBank(previous []string) (string, error) {
	bank, err := p.bank()
	if err != nil {
		return "", err
	}
	available := unasked(bank, previous)
	if len(available) == 0 {
		return "", ErrNoQuestions
	}
	return available[p.rnd.IntN(len(available))], nil
}

func (p *Picker) bank() ([]string, error) {
	var bank []string
	found, err := fileutil.ReadJSON(p.questionsPath, &bank)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("load question bank: %s is missing or empty", p.questionsPath)
	}
	return bank, nil
}

func unasked(bank, previous []string) []string {
	seen := make(map[string]struct{}, len(previous))
	for _, q := range previous {
		seen[q] = struct{}{}
	}
	var out []string
	for _, q := range bank {
		if _, ok := seen[q]; !ok {
			out = append(out, q)
		}
	}
	return out
}
