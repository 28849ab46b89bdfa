package feed

import (
	"sort"
	"time"
)

// Merge combines entries from archive snapshots, the live feed and the
// previously stored feed document, keyed by link. Snapshots form the base;
// the live feed overlays it (or, with ignoreLive, removes its links without
// contributing any); stored entries overlay last, so posts that already went
// through full-text enrichment in a prior run are never re-enriched. New is
// the subset of merged links absent from stored.
func Merge(snapshots, live, stored map[string]*Entry, ignoreLive bool) MergeResult {
	merged := make(map[string]*Entry, len(snapshots)+len(live)+len(stored))
	for link, entry := range snapshots {
		merged[link] = entry
	}

	if ignoreLive {
		for link := range live {
			delete(merged, link)
		}
	} else {
		for link, entry := range live {
			merged[link] = entry
		}
	}

	for link, entry := range stored {
		merged[link] = entry
	}

	fresh := make(map[string]*Entry)
	for link, entry := range merged {
		if _, ok := stored[link]; !ok {
			fresh[link] = entry
		}
	}

	return MergeResult{Merged: merged, New: fresh}
}

// FilterByWindow keeps entries whose publish date (date part only) lies in
// the closed interval [earliest, latest]. Nil bounds are open.
func FilterByWindow(entries map[string]*Entry, earliest, latest *time.Time) map[string]*Entry {
	kept := make(map[string]*Entry, len(entries))
	for link, entry := range entries {
		day := dateOnly(entry.Created)
		if earliest != nil && day.Before(dateOnly(*earliest)) {
			continue
		}
		if latest != nil && day.After(dateOnly(*latest)) {
			continue
		}
		kept[link] = entry
	}
	return kept
}

// SortByCreatedDesc orders entries by publish time descending, breaking ties
// by link so output is deterministic.
func SortByCreatedDesc(entries map[string]*Entry) []*Entry {
	sorted := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		sorted = append(sorted, entry)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Created.Equal(sorted[j].Created) {
			return sorted[i].Created.After(sorted[j].Created)
		}
		return sorted[i].Link < sorted[j].Link
	})
	return sorted
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
