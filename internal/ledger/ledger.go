package ledger

import (
	"maps"
	"sort"
)

// Entry is one file name and its usage count.
type Entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Ledger holds the usage counts of one folder. It is not safe for concurrent use.
type Ledger struct {
	folder string
	counts map[string]int
}

// New returns an empty ledger for folder.
func New(folder string) *Ledger {
	return &Ledger{folder: folder, counts: make(map[string]int)}
}

// Folder returns the directory the ledger tracks.
func (l *Ledger) Folder() string {
	return l.folder
}

// Register inserts a zero count for every name not yet present and reports
// whether any entry was added.
func (l *Ledger) Register(names ...string) bool {
	added := false
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := l.counts[name]; !ok {
			l.counts[name] = 0
			added = true
		}
	}
	return added
}

// Increment bumps the count for name, creating the entry if needed, and
// returns the new count.
func (l *Ledger) Increment(name string) int {
	l.counts[name]++
	return l.counts[name]
}

// Count returns the usage count for name. Unknown names count as zero.
func (l *Ledger) Count(name string) int {
	return l.counts[name]
}

// Has reports whether name has an entry.
func (l *Ledger) Has(name string) bool {
	_, ok := l.counts[name]
	return ok
}

// Len returns the number of tracked names.
func (l *Ledger) Len() int {
	return len(l.counts)
}

// Entries returns all entries sorted by name.
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, 0, len(l.counts))
	for name, count := range l.counts {
		entries = append(entries, Entry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Reset sets every count back to zero while keeping the entries.
func (l *Ledger) Reset() {
	for name := range l.counts {
		l.counts[name] = 0
	}
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{folder: l.folder, counts: maps.Clone(l.counts)}
}

// Counts returns a copy of the underlying mapping.
func (l *Ledger) Counts() map[string]int {
	return maps.Clone(l.counts)
}
