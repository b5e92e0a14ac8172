package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"homework/internal/fileutil"
	"homework/internal/logging"
)

// DefaultFileName is the ledger file name used when none is configured.
const DefaultFileName = "usage_history.json"

// ErrInvalidLedger marks a ledger file whose content does not match the schema.
var ErrInvalidLedger = errors.New("invalid ledger")

// Store reads and writes ledger files named FileName inside each folder.
type Store struct {
	fileName string
	logger   *slog.Logger
}

// NewStore creates a store. An empty fileName falls back to DefaultFileName.
func NewStore(fileName string, logger *slog.Logger) *Store {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Store{
		fileName: fileName,
		logger:   logging.NewComponentLogger(logger, "ledger"),
	}
}

// FileName returns the ledger file name written into each folder.
func (s *Store) FileName() string {
	return s.fileName
}

// Path returns the ledger file location for folder.
func (s *Store) Path(folder string) string {
	return filepath.Join(folder, s.fileName)
}

// Load returns the ledger for folder. A missing or corrupt file yields an
// empty ledger; the problem is logged and never returned.
func (s *Store) Load(folder string) *Ledger {
	l, err := s.Read(folder)
	if err == nil {
		return l
	}
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no ledger yet", logging.String(logging.FieldFolder, folder))
		return New(folder)
	}
	logging.WarnWithContext(s.logger, "ledger unreadable; starting fresh", "ledger_reset",
		logging.String(logging.FieldFolder, folder),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect or delete "+s.Path(folder)),
		logging.String(logging.FieldImpact, "usage counts for this folder restart at zero"))
	return New(folder)
}

// Read parses the ledger for folder and reports every failure, including a
// missing file (wrapping fs.ErrNotExist) and schema violations (wrapping
// ErrInvalidLedger).
func (s *Store) Read(folder string) (*Ledger, error) {
	path := s.Path(folder)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	l := New(folder)
	if len(bytes.TrimSpace(data)) == 0 {
		return l, nil
	}

	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidLedger, path, err)
	}
	for name, count := range counts {
		if count < 0 {
			return nil, fmt.Errorf("%w: %s has negative count %d for %q", ErrInvalidLedger, path, count, name)
		}
		l.counts[name] = count
	}

	s.logger.Debug("loaded ledger",
		logging.String(logging.FieldFolder, folder),
		logging.Int("entry_count", l.Len()))
	return l, nil
}

// Save overwrites the ledger file with key-sorted JSON. The write goes to a
// temp file in the same folder and is renamed into place.
func (s *Store) Save(l *Ledger) error {
	if l == nil {
		return errors.New("save ledger: nil ledger")
	}
	folder := l.Folder()
	if folder == "" {
		return errors.New("save ledger: ledger has no folder")
	}

	data, err := Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal ledger for %s: %w", folder, err)
	}

	if err := fileutil.WriteFileAtomic(s.Path(folder), data, 0o644); err != nil {
		return fmt.Errorf("replace ledger in %s: %w", folder, err)
	}

	s.logger.Debug("saved ledger",
		logging.String(logging.FieldFolder, folder),
		logging.Int("entry_count", l.Len()))
	return nil
}

// Marshal renders the ledger as two-space indented JSON with sorted keys.
func Marshal(l *Ledger) ([]byte, error) {
	counts := l.counts
	if counts == nil {
		counts = map[string]int{}
	}
	// encoding/json writes map keys in sorted order.
	return fileutil.MarshalJSON(counts)
}
