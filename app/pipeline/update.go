package pipeline

import (
	"context"
	"log/slog"

	"github.com/mohamedmoataz-oacc/history4feed/app/fetcher"
)

// UpdateAll incrementally extends every stored feed. Feeds with a configured
// latest_entry are skipped: they carry a user-imposed upper bound and are
// considered complete. One feed failing never aborts the batch.
func (r *Reconstructor) UpdateAll(ctx context.Context) error {
	feeds, err := r.feeds.GetFeedList()
	if err != nil {
		return err
	}

	slog.Info("Updating feeds", "count", len(feeds))

	for i, row := range feeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if row.LatestEntry != "" {
			slog.Info("Skipping windowed feed", "n", i+1, "total", len(feeds), "url", row.URL)
			continue
		}

		slog.Info("Updating feed", "n", i+1, "total", len(feeds), "url", row.URL)

		// The validation fetch runs before the stored settings are loaded,
		// so it gets the default retry count rather than none.
		opts := Options{
			EarliestEntry:         row.EarliestEntry,
			IgnoreLiveFeedEntries: row.IgnoreLiveFeedEntries,
			Retries:               fetcher.DefaultMaxRetries,
		}
		if err := r.Reconstruct(ctx, row.URL, opts, true); err != nil {
			slog.Error("Update failed", "url", row.URL, "error", err)
		}
	}

	return nil
}
