package storage

import (
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-rhythm/internal/scoring"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(hash, mods string, score int) Result {
	return NewResult(hash, "Band - Alpha", mods, score, 42, 97.5,
		scoring.GradeA, scoring.Counts{Perfect: 17, Great: 2, Good: 1})
}

func TestSaveAndBestResult(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveResult(sampleResult("abc", "none", 1000)); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if _, err := store.SaveResult(sampleResult("abc", "none", 3000)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveResult(sampleResult("abc", "none", 2000)); err != nil {
		t.Fatal(err)
	}

	best, err := store.BestResult("abc", "none")
	if err != nil {
		t.Fatalf("BestResult: %v", err)
	}
	if best == nil || best.Score != 3000 {
		t.Fatalf("best = %+v, want score 3000", best)
	}
	if best.ChartTitle != "Band - Alpha" || best.Grade != "A" {
		t.Errorf("best fields = %+v", best)
	}
	if best.Perfect != 17 || best.Great != 2 || best.Good != 1 || best.Miss != 0 {
		t.Errorf("counts = %+v", best)
	}
	if best.CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestBestResultNoEntries(t *testing.T) {
	store := openTestStore(t)
	best, err := store.BestResult("nothing", "none")
	if err != nil {
		t.Fatalf("BestResult: %v", err)
	}
	if best != nil {
		t.Errorf("best = %+v, want nil", best)
	}
}

func TestBestResultTieKeepsEarlierRun(t *testing.T) {
	store := openTestStore(t)

	first, err := store.SaveResult(sampleResult("abc", "none", 5000))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveResult(sampleResult("abc", "none", 5000)); err != nil {
		t.Fatal(err)
	}

	best, err := store.BestResult("abc", "none")
	if err != nil {
		t.Fatal(err)
	}
	if best.ID != first {
		t.Errorf("best id = %d, want the earlier run %d", best.ID, first)
	}
}

func TestBestResultIsPerModSet(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveResult(sampleResult("abc", "none", 9000)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveResult(sampleResult("abc", "HDDT", 4000)); err != nil {
		t.Fatal(err)
	}

	best, err := store.BestResult("abc", "HDDT")
	if err != nil {
		t.Fatal(err)
	}
	if best == nil || best.Score != 4000 {
		t.Errorf("HDDT best = %+v, want score 4000", best)
	}
}

func TestTopResults(t *testing.T) {
	store := openTestStore(t)

	for _, score := range []int{500, 2500, 1500, 3500} {
		if _, err := store.SaveResult(sampleResult("abc", "none", score)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.SaveResult(sampleResult("other", "none", 9999)); err != nil {
		t.Fatal(err)
	}

	top, err := store.TopResults("abc", 3)
	if err != nil {
		t.Fatalf("TopResults: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("top = %d entries, want 3", len(top))
	}
	want := []int{3500, 2500, 1500}
	for i, r := range top {
		if r.Score != want[i] {
			t.Errorf("top[%d].Score = %d, want %d", i, r.Score, want[i])
		}
		if r.ChartHash != "abc" {
			t.Errorf("top[%d] leaked chart %q", i, r.ChartHash)
		}
	}
}

func TestRecentResults(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveResult(sampleResult("first", "none", 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveResult(sampleResult("second", "none", 50)); err != nil {
		t.Fatal(err)
	}

	recent, err := store.RecentResults(10)
	if err != nil {
		t.Fatalf("RecentResults: %v", err)
	}
	if len(recent) != 2 || recent[0].ChartHash != "second" {
		t.Errorf("recent = %+v, want newest first", recent)
	}
}

func TestClearResults(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveResult(sampleResult("abc", "none", 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveResult(sampleResult("keep", "none", 200)); err != nil {
		t.Fatal(err)
	}

	if err := store.ClearResults("abc"); err != nil {
		t.Fatalf("ClearResults: %v", err)
	}

	gone, err := store.BestResult("abc", "none")
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Errorf("cleared chart still has results: %+v", gone)
	}

	kept, err := store.BestResult("keep", "none")
	if err != nil {
		t.Fatal(err)
	}
	if kept == nil {
		t.Error("unrelated chart was cleared")
	}
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "results.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open with nested path: %v", err)
	}
	store.Close()
}
