package ledger

import "testing"

func TestRegisterOnlyAddsMissing(t *testing.T) {
	l := New("/tmp/x")
	l.Increment("a.png")

	if added := l.Register("a.png", "b.png", ""); !added {
		t.Fatal("expected b.png to be added")
	}
	if l.Count("a.png") != 1 {
		t.Fatalf("register must not reset existing counts, got %d", l.Count("a.png"))
	}
	if !l.Has("b.png") || l.Count("b.png") != 0 {
		t.Fatal("expected b.png at zero")
	}
	if l.Has("") {
		t.Fatal("empty names must be ignored")
	}
	if added := l.Register("a.png", "b.png"); added {
		t.Fatal("expected no additions on second register")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := New("/tmp/x")
	l.Increment("a.png")
	c := l.Clone()
	c.Increment("a.png")
	c.Increment("b.png")

	if l.Count("a.png") != 1 || l.Has("b.png") {
		t.Fatalf("clone mutation leaked: %v", l.Counts())
	}
	if c.Folder() != l.Folder() {
		t.Fatal("clone lost folder")
	}
}

func TestEntriesSortedAndReset(t *testing.T) {
	l := New("/tmp/x")
	l.Increment("c.png")
	l.Increment("a.png")
	l.Register("b.png")

	entries := l.Entries()
	if len(entries) != 3 || entries[0].Name != "a.png" || entries[2].Name != "c.png" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	l.Reset()
	for _, e := range l.Entries() {
		if e.Count != 0 {
			t.Fatalf("expected zero after reset, got %+v", e)
		}
	}
	if l.Len() != 3 {
		t.Fatalf("reset must keep entries, got %d", l.Len())
	}
}
