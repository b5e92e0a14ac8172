package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strconv"
	"unicode/utf8"

	"homework/internal/ledger"
	"homework/internal/logging"
)

// LedgerStore loads and persists per-folder usage ledgers.
type LedgerStore interface {
	Load(folder string) *ledger.Ledger
	Save(l *ledger.Ledger) error
}

// Pick is one selected file.
type Pick struct {
	Path   string `json:"path"`
	Folder string `json:"folder"`
	Name   string `json:"name"`
	// Count is the usage count after this selection.
	Count int `json:"count"`
}

// FolderError reports a folder whose ledger could not be saved.
type FolderError struct {
	Folder string `json:"folder"`
	Err    error  `json:"-"`
}

func (e *FolderError) Error() string {
	return fmt.Sprintf("folder %s: %v", e.Folder, e.Err)
}

func (e *FolderError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one selection.
type Result struct {
	// Picked lists committed picks in selection rank order.
	Picked []Pick `json:"picked"`
	// Failed lists folders whose ledger save failed; their picks are not in Picked.
	Failed []*FolderError `json:"failed,omitempty"`
}

// Paths returns the picked file paths in rank order.
func (r Result) Paths() []string {
	paths := make([]string, 0, len(r.Picked))
	for _, p := range r.Picked {
		paths = append(paths, p.Path)
	}
	return paths
}

// Option customizes a Selector.
type Option func(*Selector)

// WithRand injects the random source used for tie-breaking shuffles.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Selector) {
		if rnd != nil {
			s.rnd = rnd
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// Selector performs least-used-first selection backed by a LedgerStore.
type Selector struct {
	store  LedgerStore
	rnd    *rand.Rand
	logger *slog.Logger
}

// New builds a Selector. Without WithRand the shuffle uses a PCG source seeded
// from the process-random generator.
func New(store LedgerStore, opts ...Option) *Selector {
	s := &Selector{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.logger = logging.NewComponentLogger(s.logger, "selector")
	return s
}

type candidate struct {
	path   string
	folder string
	name   string
	count  int
}

// Select picks min(n, len(unique candidates)) files preferring the least used,
// records the picks in each folder's ledger, and saves every touched ledger.
// n <= 0 or no candidates is a no-op. The returned error joins every
// FolderError in Result.Failed.
func (s *Selector) Select(ctx context.Context, candidates []string, n int) (Result, error) {
	if n <= 0 || len(candidates) == 0 {
		return Result{}, nil
	}
	if s.store == nil {
		return Result{}, errors.New("selector requires a ledger store")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	folders, byFolder := groupByFolder(s.usable(candidates))
	if len(folders) == 0 {
		return Result{}, nil
	}

	loaded := make(map[string]*ledger.Ledger, len(folders))
	pool := make([]candidate, 0, len(candidates))
	for _, folder := range folders {
		l := s.store.Load(folder)
		names := make([]string, 0, len(byFolder[folder]))
		for _, path := range byFolder[folder] {
			names = append(names, filepath.Base(path))
		}
		l.Register(names...)
		loaded[folder] = l

		for _, path := range byFolder[folder] {
			name := filepath.Base(path)
			pool = append(pool, candidate{path: path, folder: folder, name: name, count: l.Count(name)})
		}
	}

	ranked := rank(pool, s.rnd)
	take := min(n, len(ranked))
	chosen := ranked[:take]

	staged := make(map[string]*ledger.Ledger, len(loaded))
	for folder, l := range loaded {
		staged[folder] = l.Clone()
	}
	after := make([]int, len(chosen))
	for i, c := range chosen {
		after[i] = staged[c.folder].Increment(c.name)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var result Result
	failed := make(map[string]bool)
	for _, folder := range folders {
		if err := s.store.Save(staged[folder]); err != nil {
			fe := &FolderError{Folder: folder, Err: err}
			result.Failed = append(result.Failed, fe)
			failed[folder] = true
			logging.ErrorWithContext(s.logger, "ledger save failed", "ledger_save_failed",
				logging.String(logging.FieldFolder, folder),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check free space and permissions on the folder"))
		}
	}

	for i, c := range chosen {
		if failed[c.folder] {
			continue
		}
		result.Picked = append(result.Picked, Pick{Path: c.path, Folder: c.folder, Name: c.name, Count: after[i]})
	}

	s.logger.Debug("selection complete",
		logging.Int("requested", n),
		logging.Int("candidates", len(pool)),
		logging.Int("picked", len(result.Picked)),
		logging.Int("folders", len(folders)),
		logging.Int("failed_folders", len(result.Failed)))

	if len(result.Failed) > 0 {
		errs := make([]error, 0, len(result.Failed))
		for _, fe := range result.Failed {
			errs = append(errs, fe)
		}
		return result, errors.Join(errs...)
	}
	return result, nil
}

// usable drops candidates whose file name is not valid UTF-8. JSON cannot
// carry such a name, so its count would reset to zero on every load.
func (s *Selector) usable(candidates []string) []string {
	out := candidates[:0:0]
	for _, path := range candidates {
		if name := filepath.Base(path); !utf8.ValidString(name) {
			logging.WarnWithContext(s.logger, "skipping file with non-UTF-8 name", "invalid_file_name",
				logging.String(logging.FieldFolder, filepath.Dir(path)),
				logging.String("name", strconv.Quote(name)),
				logging.String(logging.FieldErrorHint, "rename the file using UTF-8 characters"),
				logging.String(logging.FieldImpact, "file is never selected"))
			continue
		}
		out = append(out, path)
	}
	return out
}

// rank shuffles the pool uniformly and then stable-sorts it by ascending
// usage, so ties keep their shuffled order.
func rank(pool []candidate, rnd *rand.Rand) []candidate {
	ranked := append([]candidate(nil), pool...)
	rnd.Shuffle(len(ranked), func(i, j int) {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count < ranked[j].count
	})
	return ranked
}

// groupByFolder drops duplicate paths and returns folders in first-seen order.
func groupByFolder(candidates []string) ([]string, map[string][]string) {
	seen := make(map[string]struct{}, len(candidates))
	byFolder := make(map[string][]string)
	var folders []string
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		path := filepath.Clean(raw)
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		folder := filepath.Dir(path)
		if _, ok := byFolder[folder]; !ok {
			folders = append(folders, folder)
		}
		byFolder[folder] = append(byFolder[folder], path)
	}
	return folders, byFolder
}
