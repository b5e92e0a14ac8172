// Package pitching keeps per-student drill history for screenshot recall
// practice.
//
// A drill shows a student screenshots in shuffled order and the teacher marks
// each one pass or fail. For every (student, image) pair the store tracks the
// total attempt count, the last few results, and a batting average over that
// window. History lives in a SQLite database opened through modernc.org/sqlite;
// the schema is embedded and versioned, and a version mismatch surfaces as
// ErrSchemaMismatch rather than an attempted migration.
package pitching
