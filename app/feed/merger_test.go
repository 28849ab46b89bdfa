package feed

import (
	"testing"
	"time"
)

func entryAt(link string, created time.Time) *Entry {
	return &Entry{Link: link, Created: created, Title: link}
}

func entrySet(entries ...*Entry) map[string]*Entry {
	m := make(map[string]*Entry)
	for _, e := range entries {
		m[e.Link] = e
	}
	return m
}

func TestMergePrecedence(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	snapshot := entryAt("https://example.com/a", created)
	snapshot.Description = "from snapshot"
	live := entryAt("https://example.com/a", created)
	live.Description = "from live"
	stored := entryAt("https://example.com/a", created)
	stored.Description = "from db"

	// Live overrides snapshot.
	result := Merge(entrySet(snapshot), entrySet(live), nil, false)
	if result.Merged["https://example.com/a"].Description != "from live" {
		t.Errorf("Expected live entry to win over snapshot, got: %q",
			result.Merged["https://example.com/a"].Description)
	}

	// Stored overrides both.
	result = Merge(entrySet(snapshot), entrySet(live), entrySet(stored), false)
	if result.Merged["https://example.com/a"].Description != "from db" {
		t.Errorf("Expected stored entry to win, got: %q",
			result.Merged["https://example.com/a"].Description)
	}
}

func TestMergeNovelty(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	stored := entrySet(entryAt("https://example.com/old", created))
	live := entrySet(
		entryAt("https://example.com/old", created),
		entryAt("https://example.com/new", created),
	)

	result := Merge(nil, live, stored, false)
	if len(result.Merged) != 2 {
		t.Errorf("Expected 2 merged entries, got: %d", len(result.Merged))
	}
	if len(result.New) != 1 {
		t.Fatalf("Expected 1 new entry, got: %d", len(result.New))
	}
	if _, ok := result.New["https://example.com/new"]; !ok {
		t.Error("Expected the unseen link to be the new entry")
	}
}

func TestMergeIgnoreLive(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	snapshots := entrySet(
		entryAt("https://example.com/archived", created),
		entryAt("https://example.com/both", created),
	)
	live := entrySet(
		entryAt("https://example.com/both", created),
		entryAt("https://example.com/live-only", created),
	)

	result := Merge(snapshots, live, nil, true)
	if len(result.Merged) != 1 {
		t.Fatalf("Expected 1 merged entry, got: %d", len(result.Merged))
	}
	if _, ok := result.Merged["https://example.com/archived"]; !ok {
		t.Error("Expected only the archive-exclusive entry to survive")
	}
}

func TestFilterByWindow(t *testing.T) {
	entries := entrySet(
		entryAt("https://example.com/early", time.Date(2019, 12, 31, 23, 0, 0, 0, time.UTC)),
		entryAt("https://example.com/on-earliest", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		entryAt("https://example.com/inside", time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)),
		entryAt("https://example.com/on-latest", time.Date(2022, 1, 1, 23, 59, 0, 0, time.UTC)),
		entryAt("https://example.com/late", time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC)),
	)

	earliest := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	kept := FilterByWindow(entries, &earliest, &latest)
	if len(kept) != 3 {
		t.Fatalf("Expected 3 entries in window, got: %d", len(kept))
	}
	// Bounds are inclusive on the date part only.
	if _, ok := kept["https://example.com/on-earliest"]; !ok {
		t.Error("Expected entry on the earliest bound to be kept")
	}
	if _, ok := kept["https://example.com/on-latest"]; !ok {
		t.Error("Expected entry on the latest bound day to be kept")
	}

	// Nil bounds are open.
	if got := len(FilterByWindow(entries, nil, nil)); got != 5 {
		t.Errorf("Expected all 5 entries with open bounds, got: %d", got)
	}
	if got := len(FilterByWindow(entries, &earliest, nil)); got != 4 {
		t.Errorf("Expected 4 entries with only an earliest bound, got: %d", got)
	}
}

func TestSortByCreatedDesc(t *testing.T) {
	entries := entrySet(
		entryAt("https://example.com/b", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)),
		entryAt("https://example.com/a", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)),
		entryAt("https://example.com/newest", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
	)

	sorted := SortByCreatedDesc(entries)
	if sorted[0].Link != "https://example.com/newest" {
		t.Errorf("Expected newest entry first, got: %s", sorted[0].Link)
	}
	// Ties break by link for deterministic output.
	if sorted[1].Link != "https://example.com/a" || sorted[2].Link != "https://example.com/b" {
		t.Errorf("Expected tie broken by link, got: %s then %s", sorted[1].Link, sorted[2].Link)
	}
}
