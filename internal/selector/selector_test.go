package selector_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"homework/internal/ledger"
	"homework/internal/selector"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func makeFolder(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("img"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		paths = append(paths, p)
	}
	return paths
}

func seedLedger(t *testing.T, store *ledger.Store, dir string, counts map[string]int) {
	t.Helper()
	l := ledger.New(dir)
	for name, count := range counts {
		l.Register(name)
		for i := 0; i < count; i++ {
			l.Increment(name)
		}
	}
	if err := store.Save(l); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
}

func names(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	sort.Strings(out)
	return out
}

func TestSelectPrefersLeastUsed(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "A.png", "B.png", "C.png")
	store := ledger.NewStore("", nil)
	seedLedger(t, store, dir, map[string]int{"A.png": 0, "B.png": 0, "C.png": 3})

	sel := selector.New(store, selector.WithRand(seeded(1)))
	res, err := sel.Select(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := names(res.Paths()); !reflect.DeepEqual(got, []string{"A.png", "B.png"}) {
		t.Fatalf("expected A and B, got %v", got)
	}

	want := map[string]int{"A.png": 1, "B.png": 1, "C.png": 3}
	if got := store.Load(dir).Counts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ledger after selection: got %v want %v", got, want)
	}
	for _, p := range res.Picked {
		if p.Count != 1 {
			t.Fatalf("expected post-selection count 1, got %+v", p)
		}
	}
}

func TestSelectNoOpCases(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "A.png")
	store := ledger.NewStore("", nil)
	sel := selector.New(store)

	for _, tc := range []struct {
		name       string
		candidates []string
		n          int
	}{
		{"empty candidates", nil, 5},
		{"zero n", paths, 0},
		{"negative n", paths, -3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := sel.Select(context.Background(), tc.candidates, tc.n)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if len(res.Picked) != 0 || len(res.Failed) != 0 {
				t.Fatalf("expected empty result, got %+v", res)
			}
			if _, err := os.Stat(store.Path(dir)); !os.IsNotExist(err) {
				t.Fatalf("expected no ledger write, stat err=%v", err)
			}
		})
	}
}

func TestSelectMoreThanAvailableReturnsAll(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "A.png", "B.png", "C.png")
	store := ledger.NewStore("", nil)

	res, err := selector.New(store).Select(context.Background(), paths, 10)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := names(res.Paths()); !reflect.DeepEqual(got, names(paths)) {
		t.Fatalf("expected full pool, got %v", got)
	}
	for name, count := range store.Load(dir).Counts() {
		if count != 1 {
			t.Fatalf("expected %s incremented once, got %d", name, count)
		}
	}
}

func TestSelectReturnsDistinctItems(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "A.png", "B.png", "C.png", "D.png", "E.png")
	store := ledger.NewStore("", nil)
	sel := selector.New(store, selector.WithRand(seeded(7)))

	dupes := append(append([]string(nil), paths...), paths[0], paths[1], paths[0]+string(filepath.Separator))
	for n := 1; n <= len(paths); n++ {
		res, err := sel.Select(context.Background(), dupes, n)
		if err != nil {
			t.Fatalf("Select n=%d: %v", n, err)
		}
		got := res.Paths()
		if len(got) != n {
			t.Fatalf("n=%d: expected %d picks, got %d", n, n, len(got))
		}
		seen := map[string]bool{}
		for _, p := range got {
			if seen[p] {
				t.Fatalf("n=%d: duplicate pick %s", n, p)
			}
			seen[p] = true
		}
	}
}

func TestSelectIncrementsExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "A.png", "B.png", "C.png", "D.png")
	store := ledger.NewStore("", nil)
	seedLedger(t, store, dir, map[string]int{"A.png": 2, "B.png": 5, "C.png": 0, "D.png": 1})
	before := store.Load(dir).Counts()

	res, err := selector.New(store, selector.WithRand(seeded(3))).Select(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	after := store.Load(dir).Counts()
	picked := map[string]bool{}
	for _, p := range res.Picked {
		picked[p.Name] = true
	}
	for name, was := range before {
		want := was
		if picked[name] {
			want++
		}
		if after[name] != want {
			t.Fatalf("%s: before %d after %d picked=%v", name, was, after[name], picked[name])
		}
	}
	if !picked["C.png"] || !picked["D.png"] {
		t.Fatalf("expected the two least used files, got %v", picked)
	}
}

func TestSelectCorruptLedgerTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "X.png", "Y.png")
	store := ledger.NewStore("", nil)
	if err := os.WriteFile(store.Path(dir), []byte("{{{"), 0o644); err != nil {
		t.Fatalf("write corrupt ledger: %v", err)
	}

	res, err := selector.New(store, selector.WithRand(seeded(11))).Select(context.Background(), paths, 1)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(res.Picked) != 1 {
		t.Fatalf("expected one pick, got %+v", res.Picked)
	}
	l, err := store.Read(dir)
	if err != nil {
		t.Fatalf("ledger should be valid after selection: %v", err)
	}
	counts := l.Counts()
	if len(counts) != 2 || counts["X.png"]+counts["Y.png"] != 1 {
		t.Fatalf("unexpected counts after recovery: %v", counts)
	}
}

func TestSelectWritesEveryTouchedFolder(t *testing.T) {
	root := t.TempDir()
	used := filepath.Join(root, "ch1")
	fresh := filepath.Join(root, "ch2")
	usedPaths := makeFolder(t, used, "a.png", "b.png")
	freshPaths := makeFolder(t, fresh, "c.png")
	store := ledger.NewStore("", nil)
	seedLedger(t, store, fresh, map[string]int{"c.png": 9})

	res, err := selector.New(store).Select(context.Background(), append(usedPaths, freshPaths...), 1)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(res.Picked) != 1 || res.Picked[0].Folder != used {
		t.Fatalf("expected a pick from %s, got %+v", used, res.Picked)
	}
	if got := store.Load(fresh).Counts(); !reflect.DeepEqual(got, map[string]int{"c.png": 9}) {
		t.Fatalf("untouched folder counts changed: %v", got)
	}

	// A brand-new file in a folder with no pick is still registered.
	extra := makeFolder(t, fresh, "d.png")
	if _, err := selector.New(store).Select(context.Background(), append(usedPaths, extra...), 1); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !store.Load(fresh).Has("d.png") {
		t.Fatal("expected d.png registered eagerly")
	}
}

func TestSelectRotatesFairlyAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "a.png", "b.png", "c.png", "d.png")
	store := ledger.NewStore("", nil)
	sel := selector.New(store, selector.WithRand(seeded(5)))

	seen := map[string]int{}
	for i := 0; i < len(paths); i++ {
		res, err := sel.Select(context.Background(), paths, 1)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		seen[res.Picked[0].Name]++
	}
	for _, p := range paths {
		if seen[filepath.Base(p)] != 1 {
			t.Fatalf("expected every file exactly once across %d runs, got %v", len(paths), seen)
		}
	}
}

func TestSelectFairnessPrefersLowerUsage(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "a.png", "b.png", "c.png")
	store := ledger.NewStore("", nil)
	sel := selector.New(store, selector.WithRand(seeded(99)))

	wins := map[string]int{}
	const trials = 300
	for i := 0; i < trials; i++ {
		seedLedger(t, store, dir, map[string]int{"a.png": 0, "b.png": 0, "c.png": 1})
		res, err := sel.Select(context.Background(), paths, 1)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		wins[res.Picked[0].Name]++
	}
	if wins["c.png"] != 0 {
		t.Fatalf("more-used file must never win while a less-used one exists: %v", wins)
	}
	if wins["a.png"] == 0 || wins["b.png"] == 0 {
		t.Fatalf("ties should be broken randomly, got %v", wins)
	}
}

func TestSelectDeterministicWithSeed(t *testing.T) {
	run := func() []string {
		dir := t.TempDir()
		paths := makeFolder(t, dir, "a.png", "b.png", "c.png", "d.png", "e.png", "f.png")
		res, err := selector.New(ledger.NewStore("", nil), selector.WithRand(seeded(42))).
			Select(context.Background(), paths, 3)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		var out []string
		for _, p := range res.Picked {
			out = append(out, p.Name)
		}
		return out
	}
	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different picks: %v vs %v", first, second)
	}
}

type failingStore struct {
	*ledger.Store
	failFolder string
}

func (f failingStore) Save(l *ledger.Ledger) error {
	if l.Folder() == f.failFolder {
		return errors.New("disk full")
	}
	return f.Store.Save(l)
}

func TestSelectIsolatesSaveFailures(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good")
	bad := filepath.Join(root, "bad")
	goodPaths := makeFolder(t, good, "g1.png", "g2.png")
	badPaths := makeFolder(t, bad, "b1.png", "b2.png")
	base := ledger.NewStore("", nil)
	store := failingStore{Store: base, failFolder: bad}

	res, err := selector.New(store, selector.WithRand(seeded(8))).
		Select(context.Background(), append(goodPaths, badPaths...), 4)
	if err == nil {
		t.Fatal("expected save error")
	}
	var fe *selector.FolderError
	if !errors.As(err, &fe) || fe.Folder != bad {
		t.Fatalf("expected FolderError for %s, got %v", bad, err)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("expected one failed folder, got %+v", res.Failed)
	}
	for _, p := range res.Picked {
		if p.Folder == bad {
			t.Fatalf("picks from failed folder must be withheld: %+v", p)
		}
	}
	if got := names(res.Paths()); !reflect.DeepEqual(got, []string{"g1.png", "g2.png"}) {
		t.Fatalf("expected good folder picks, got %v", got)
	}
	if _, err := os.Stat(base.Path(bad)); !os.IsNotExist(err) {
		t.Fatalf("failed folder must not have a ledger, stat err=%v", err)
	}
	if got := base.Load(good).Counts(); got["g1.png"] != 1 || got["g2.png"] != 1 {
		t.Fatalf("good folder not committed: %v", got)
	}
}

func TestSelectHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "a.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := ledger.NewStore("", nil)
	if _, err := selector.New(store).Select(ctx, paths, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(store.Path(dir)); !os.IsNotExist(err) {
		t.Fatal("cancelled selection must not write")
	}
}

func TestSelectSkipsNonUTF8Names(t *testing.T) {
	dir := t.TempDir()
	paths := makeFolder(t, dir, "A.png", "B.png")
	invalid := filepath.Join(dir, "a\xffb.png")
	store := ledger.NewStore("", nil)
	sel := selector.New(store, selector.WithRand(seeded(5)))

	for i := 0; i < 4; i++ {
		res, err := sel.Select(context.Background(), append([]string{invalid}, paths...), 1)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if len(res.Picked) != 1 || res.Picked[0].Path == invalid {
			t.Fatalf("run %d: unexpected picks %+v", i, res.Picked)
		}
	}

	want := map[string]int{"A.png": 2, "B.png": 2}
	if got := store.Load(dir).Counts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ledger after rotation: got %v want %v", got, want)
	}

	res, err := sel.Select(context.Background(), []string{invalid}, 3)
	if err != nil || len(res.Picked) != 0 {
		t.Fatalf("only invalid names: res=%+v err=%v", res, err)
	}
}
