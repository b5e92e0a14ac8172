package homework

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"homework/internal/catalog"
	"homework/internal/compose"
	"homework/internal/config"
	"homework/internal/ledger"
	"homework/internal/logging"
	"homework/internal/questions"
	"homework/internal/roster"
	"homework/internal/selector"
)

// NoQuestionText fills the question box once a student has been asked every
// question in the bank.
const NoQuestionText = "NO AVAILABLE QUESTIONS."

// Generator produces homework sheets for every student.
type Generator struct {
	cfg      *config.Config
	enum     *catalog.Enumerator
	selector *selector.Selector
	picker   *questions.Picker
	renderer *compose.Renderer
	logger   *slog.Logger
	now      func() time.Time
	only     map[string]struct{}
}

// Option customizes a Generator.
type Option func(*genOptions)

type genOptions struct {
	logger *slog.Logger
	rnd    *rand.Rand
	now    func() time.Time
	only   []string
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *genOptions) { o.logger = logger }
}

// WithRand seeds image and question selection.
func WithRand(r *rand.Rand) Option {
	return func(o *genOptions) { o.rnd = r }
}

// WithClock overrides the clock used for the sheet date and file name.
func WithClock(now func() time.Time) Option {
	return func(o *genOptions) { o.now = now }
}

// WithStudents limits the run to the named students.
func WithStudents(names ...string) Option {
	return func(o *genOptions) { o.only = append(o.only, names...) }
}

// New wires a generator from cfg.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, errors.New("homework generator requires config")
	}
	o := genOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	renderer, err := compose.NewRenderer(compose.Options{
		RowHeight:    cfg.Render.RowHeight,
		HeaderHeight: cfg.Render.HeaderHeight,
		MinWidth:     cfg.Render.MinWidth,
		FontPath:     cfg.Render.FontPath,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	logger := logging.NewComponentLogger(o.logger, "homework")
	store := ledger.NewStore(cfg.Selection.LedgerFile, o.logger)
	g := &Generator{
		cfg:      cfg,
		enum:     catalog.NewEnumerator(cfg.Selection.Extensions, cfg.Selection.ExcludeMarker, o.logger),
		selector: selector.New(store, selector.WithRand(o.rnd), selector.WithLogger(o.logger)),
		picker: questions.NewPicker(cfg.QuestionsPath(), cfg.AskedPath(),
			questions.WithRand(o.rnd),
			questions.WithLogger(o.logger),
			questions.WithCustomFile(cfg.Questions.CustomFile)),
		renderer: renderer,
		logger:   logger,
		now:      o.now,
	}
	if len(o.only) > 0 {
		g.only = make(map[string]struct{}, len(o.only))
		for _, name := range o.only {
			g.only[norm.NFC.String(strings.TrimSpace(name))] = struct{}{}
		}
	}
	return g, nil
}

// Run generates today's sheets. The returned error joins every per-student
// failure; the Summary is complete either way.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	if err := g.cfg.EnsureDirectories(); err != nil {
		return Summary{}, fmt.Errorf("ensure directories: %w", err)
	}
	lock := newRunLock(g.cfg.LockPath())
	if err := lock.acquire(); err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := lock.release(); err != nil {
			g.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	now := g.now()
	summary := Summary{Date: now}
	existing, err := existingSheets(g.cfg.Paths.OutputDir)
	if err != nil {
		return summary, fmt.Errorf("list output directory: %w", err)
	}

	students := roster.Collect(roster.Dirs(g.cfg))
	g.logger.Info("homework run started",
		logging.Int("student_count", len(students)),
		logging.String("output_dir", g.cfg.Paths.OutputDir))

	var errs []error
	for _, student := range students {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if g.only != nil {
			if _, ok := g.only[student.Name]; !ok {
				continue
			}
		}

		result := g.runStudent(ctx, student, existing, now)
		summary.Students = append(summary.Students, result)
		switch result.Outcome {
		case OutcomeGenerated:
			existing = append(existing, filepath.Base(result.Output))
		case OutcomeFailed:
			errs = append(errs, fmt.Errorf("student %s: %w", student.Name, result.Err))
		}
	}

	g.logger.Info("homework run finished",
		logging.Int("generated", summary.Count(OutcomeGenerated)),
		logging.Int("skipped", summary.Count(OutcomeSkipped)),
		logging.Int("failed", summary.Count(OutcomeFailed)))
	return summary, errors.Join(errs...)
}

func (g *Generator) runStudent(ctx context.Context, student roster.Student, existing []string, now time.Time) StudentResult {
	result := StudentResult{Student: student.Name, Plan: student.Plan}
	logger := g.logger.With(logging.String(logging.FieldStudent, student.Name))

	if sheet, ok := findSheet(existing, student.Name); ok {
		result.Outcome = OutcomeSkipped
		result.Reason = "existing homework " + sheet
		logger.Info("student skipped", logging.String("reason", result.Reason))
		return result
	}

	targets := roster.TargetsFor(g.cfg, student.Plan)
	if targets.Question {
		// Selection commits ledger increments, so a broken question source
		// has to fail the student first.
		if err := g.picker.Ready(student.Dir); err != nil {
			return g.fail(logger, result, "check questions", err)
		}
	}
	currentPool := g.enum.Images(filepath.Join(student.Dir, g.cfg.Selection.CurrentDir))
	pastPool := g.enum.Images(filepath.Join(student.Dir, g.cfg.Selection.PastDir))

	current, err := g.selector.Select(ctx, currentPool, min(len(currentPool), targets.Current))
	if err != nil {
		return g.fail(logger, result, "select current chapter images", err)
	}
	past, err := g.selector.Select(ctx, pastPool, min(len(pastPool), targets.Past))
	if err != nil {
		return g.fail(logger, result, "select past chapter images", err)
	}
	result.Current = len(current.Picked)
	result.Past = len(past.Picked)

	paths := append(current.Paths(), past.Paths()...)
	if len(paths) == 0 {
		result.Outcome = OutcomeSkipped
		result.Reason = "no images available"
		logging.WarnWithContext(logger, "student has no images", "no_images",
			logging.String(logging.FieldErrorHint, "add screenshots under "+g.cfg.Selection.CurrentDir+" or "+g.cfg.Selection.PastDir),
			logging.String(logging.FieldImpact, "no homework generated for this student"))
		return result
	}

	sheet := compose.Sheet{Title: student.Name + " " + compose.DisplayDate(now)}
	for _, path := range paths {
		img, err := compose.LoadImage(path)
		if err != nil {
			return g.fail(logger, result, "load screenshot", err)
		}
		sheet.Rows = append(sheet.Rows, compose.Row{Image: img, Label: catalog.ChapterLabel(path)})
	}

	if targets.Question {
		question, err := g.picker.Next(student.Name, student.Dir)
		switch {
		case errors.Is(err, questions.ErrNoQuestions):
			logging.WarnWithContext(logger, "question bank exhausted", "questions_exhausted",
				logging.String(logging.FieldErrorHint, "add questions to "+g.cfg.QuestionsPath()),
				logging.String(logging.FieldImpact, "sheet shows a placeholder question"))
			question = NoQuestionText
		case err != nil:
			return g.fail(logger, result, "pick question", err)
		}
		sheet.WithQuestion = true
		sheet.Question = question
		result.Question = true
	}

	img, err := g.renderer.Render(sheet)
	if err != nil {
		return g.fail(logger, result, "render sheet", err)
	}
	output := filepath.Join(g.cfg.Paths.OutputDir, OutputName(now, student.Name))
	if err := compose.WriteJPEG(output, img, g.cfg.Render.JPEGQuality); err != nil {
		return g.fail(logger, result, "write sheet", err)
	}

	result.Outcome = OutcomeGenerated
	result.Output = output
	logger.Info("homework generated",
		logging.String("output", output),
		logging.String("contents", result.Tag()))
	return result
}

func (g *Generator) fail(logger *slog.Logger, result StudentResult, step string, err error) StudentResult {
	result.Outcome = OutcomeFailed
	result.Err = fmt.Errorf("%s: %w", step, err)
	result.Reason = result.Err.Error()
	logging.ErrorWithContext(logger, "homework failed", "student_failed",
		logging.String("step", step),
		logging.Error(err),
		logging.String(logging.FieldImpact, "no homework generated for this student"))
	return result
}
