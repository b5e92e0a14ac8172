// Package ledger persists per-folder usage counts for homework screenshots.
//
// Every folder of chapter screenshots carries one ledger file (default
// usage_history.json) mapping file names to how many times the file has been
// handed out. The selector loads a folder's ledger, registers newly discovered
// files at zero, increments the files it picks, and saves the result.
//
// # Storage
//
// The file is a flat JSON object with keys sorted ascending so diffs stay
// small:
//
//	{
//	  "ch01_p03.png": 2,
//	  "ch01_p04.png": 0
//	}
//
// A missing, empty, or unreadable ledger loads as empty and is rewritten on the
// next save. Saves go through a temp file in the same folder followed by a
// rename, so a crash never leaves a half-written ledger behind. There is no
// locking: one writer per folder at a time is assumed.
package ledger
