package feed

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/mohamedmoataz-oacc/history4feed/app/fetcher"
)

// Enricher replaces entry bodies with the extracted full text of their
// articles, pacing requests by Sleep between fetches.
type Enricher struct {
	Session   *fetcher.Session
	Extractor *Extractor
	Sleep     time.Duration
}

func NewEnricher(session *fetcher.Session, sleep time.Duration) *Enricher {
	return &Enricher{
		Session:   session,
		Extractor: NewExtractor(),
		Sleep:     sleep,
	}
}

// Enrich processes entries in link order and returns how many were enriched.
// A failing article is logged and left with whatever body it already had; it
// never aborts the batch. Only context cancellation stops the loop early.
func (e *Enricher) Enrich(ctx context.Context, entries map[string]*Entry) int {
	links := make([]string, 0, len(entries))
	for link := range entries {
		links = append(links, link)
	}
	sort.Strings(links)

	enriched := 0
	for i, link := range links {
		entry := entries[link]
		slog.Info("Processing into full text", "n", i+1, "total", len(links), "url", link)

		if err := e.enrichEntry(ctx, entry); err != nil {
			if ctx.Err() != nil {
				return enriched
			}
			slog.Warn("Failed to process entry into full text", "url", link, "error", err)
		} else {
			enriched++
		}

		if i < len(links)-1 {
			if err := sleep(ctx, e.Sleep); err != nil {
				return enriched
			}
		}
	}

	return enriched
}

func (e *Enricher) enrichEntry(ctx context.Context, entry *Entry) error {
	page, err := e.Session.Fetch(ctx, entry.Link)
	if err != nil {
		return err
	}

	content, err := e.Extractor.Extract(page, entry.Link)
	if err != nil {
		return err
	}

	entry.Description = content
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
