package pitching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"homework/internal/logging"
)

// NewSessionID returns an identifier that ties a drill's attempts together.
func NewSessionID() string {
	return uuid.NewString()
}

const statColumns = "student, image_key, total_attempts, recent, batting_average, last_played, last_session"

// Record adds one attempt for student on imageKey. An empty sessionID gets a
// fresh one.
func (s *Store) Record(ctx context.Context, student, imageKey string, result Result, sessionID string) (Stat, error) {
	student, imageKey, err := normalizeKey(student, imageKey)
	if err != nil {
		return Stat{}, err
	}
	if result != ResultPass && result != ResultFail {
		return Stat{}, fmt.Errorf("record attempt: invalid result %q", result)
	}
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	now := s.now().UTC()

	var stat Stat
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getStat(ctx, tx, student, imageKey)
		switch {
		case errors.Is(err, ErrNotFound):
			current = Stat{Student: student, ImageKey: imageKey}
		case err != nil:
			return err
		}

		current.TotalAttempts++
		current.Recent = append(current.Recent, result)
		if over := len(current.Recent) - s.window; over > 0 {
			current.Recent = current.Recent[over:]
		}
		current.BattingAverage = Average(current.Recent)
		current.LastPlayed = now
		current.LastSession = sessionID

		if err := putStat(ctx, tx, current); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO attempts (student, image_key, result, session_id, played_at) VALUES (?, ?, ?, ?, ?)",
			student, imageKey, string(result), sessionID, formatTime(now),
		); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		stat = current
		return nil
	})
	if err != nil {
		return Stat{}, fmt.Errorf("record attempt for %s %s: %w", student, imageKey, err)
	}

	s.logger.Debug("attempt recorded",
		logging.String(logging.FieldStudent, student),
		logging.String(logging.FieldSessionID, sessionID),
		logging.String("image_key", imageKey),
		logging.String("result", string(result)),
		logging.Float64("batting_average", stat.BattingAverage))
	return stat, nil
}

// Rollback undoes the most recent attempt on imageKey: the last result leaves
// the window and the total drops by one. ErrNotFound means there is no
// history or nothing left to undo.
func (s *Store) Rollback(ctx context.Context, student, imageKey string) (Stat, error) {
	student, imageKey, err := normalizeKey(student, imageKey)
	if err != nil {
		return Stat{}, err
	}

	var stat Stat
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getStat(ctx, tx, student, imageKey)
		if err != nil {
			return err
		}
		if current.TotalAttempts == 0 && len(current.Recent) == 0 {
			return fmt.Errorf("%w: nothing to undo for %s %s", ErrNotFound, student, imageKey)
		}
		if n := len(current.Recent); n > 0 {
			current.Recent = current.Recent[:n-1]
		}
		if current.TotalAttempts > 0 {
			current.TotalAttempts--
		}
		current.BattingAverage = Average(current.Recent)
		if err := putStat(ctx, tx, current); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM attempts WHERE id = (
				SELECT id FROM attempts WHERE student = ? AND image_key = ? ORDER BY id DESC LIMIT 1
			)`, student, imageKey,
		); err != nil {
			return fmt.Errorf("delete attempt: %w", err)
		}
		stat = current
		return nil
	})
	if err != nil {
		return Stat{}, fmt.Errorf("rollback attempt for %s %s: %w", student, imageKey, err)
	}

	s.logger.Debug("attempt rolled back",
		logging.String(logging.FieldStudent, student),
		logging.String("image_key", imageKey),
		logging.Int("total_attempts", stat.TotalAttempts))
	return stat, nil
}

// Get returns the history for one image, or ErrNotFound.
func (s *Store) Get(ctx context.Context, student, imageKey string) (Stat, error) {
	student, imageKey, err := normalizeKey(student, imageKey)
	if err != nil {
		return Stat{}, err
	}
	var stat Stat
	err = retryOnBusy(ensureContext(ctx), func() error {
		var getErr error
		stat, getErr = getStat(ensureContext(ctx), s.db, student, imageKey)
		return getErr
	})
	return stat, err
}

// Stats lists a student's history sorted by image key.
func (s *Store) Stats(ctx context.Context, student string) ([]Stat, error) {
	ctx = ensureContext(ctx)
	student = norm.NFC.String(strings.TrimSpace(student))
	if student == "" {
		return nil, errors.New("stats: student is required")
	}

	var stats []Stat
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			"SELECT "+statColumns+" FROM image_stats WHERE student = ? ORDER BY image_key", student)
		if err != nil {
			return err
		}
		defer rows.Close()
		stats = stats[:0]
		for rows.Next() {
			stat, err := scanStat(rows)
			if err != nil {
				return err
			}
			stats = append(stats, stat)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list stats for %s: %w", student, err)
	}
	return stats, nil
}

// Students lists every student with recorded history.
func (s *Store) Students(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT student FROM image_stats ORDER BY student")
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getStat(ctx context.Context, q queryer, student, imageKey string) (Stat, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+statColumns+" FROM image_stats WHERE student = ? AND image_key = ?", student, imageKey)
	stat, err := scanStat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Stat{}, fmt.Errorf("%w for %s %s", ErrNotFound, student, imageKey)
	}
	return stat, err
}

func putStat(ctx context.Context, tx *sql.Tx, stat Stat) error {
	var lastPlayed sql.NullString
	if !stat.LastPlayed.IsZero() {
		lastPlayed = sql.NullString{String: formatTime(stat.LastPlayed), Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO image_stats (`+statColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(student, image_key) DO UPDATE SET
			total_attempts = excluded.total_attempts,
			recent = excluded.recent,
			batting_average = excluded.batting_average,
			last_played = excluded.last_played,
			last_session = excluded.last_session`,
		stat.Student, stat.ImageKey, stat.TotalAttempts, encodeRecent(stat.Recent),
		stat.BattingAverage, lastPlayed, nullable(stat.LastSession),
	)
	if err != nil {
		return fmt.Errorf("upsert stat: %w", err)
	}
	return nil
}

func scanStat(row scanner) (Stat, error) {
	var (
		stat        Stat
		recent      string
		lastPlayed  sql.NullString
		lastSession sql.NullString
	)
	if err := row.Scan(&stat.Student, &stat.ImageKey, &stat.TotalAttempts, &recent,
		&stat.BattingAverage, &lastPlayed, &lastSession); err != nil {
		return Stat{}, err
	}
	stat.Recent = decodeRecent(recent)
	stat.LastSession = lastSession.String
	if lastPlayed.Valid && lastPlayed.String != "" {
		t, err := time.Parse(time.RFC3339Nano, lastPlayed.String)
		if err != nil {
			return Stat{}, fmt.Errorf("parse last_played %q: %w", lastPlayed.String, err)
		}
		stat.LastPlayed = t
	}
	return stat, nil
}

func normalizeKey(student, imageKey string) (string, string, error) {
	student = norm.NFC.String(strings.TrimSpace(student))
	imageKey = norm.NFC.String(strings.TrimSpace(imageKey))
	if student == "" || imageKey == "" {
		return "", "", errors.New("student and image key are required")
	}
	return student, imageKey, nil
}

func nullable(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
