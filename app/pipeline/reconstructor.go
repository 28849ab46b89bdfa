package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedmoataz-oacc/history4feed/app/database"
	"github.com/mohamedmoataz-oacc/history4feed/app/feed"
	"github.com/mohamedmoataz-oacc/history4feed/app/fetcher"
	"github.com/mohamedmoataz-oacc/history4feed/app/wayback"
)

// Options are the reconstruction settings for a single URL. On updates the
// stored feed settings take precedence over these.
type Options struct {
	EarliestEntry         string // ISO date; empty means open bound
	LatestEntry           string // ISO date; empty means open bound
	IgnoreLiveFeedEntries bool
	Pretty                bool
	Retries               int
	SleepSeconds          float64
}

// Reconstructor drives the per-URL reconstruction flow and the bulk-update
// loop over all stored feeds.
type Reconstructor struct {
	session   *fetcher.Session
	archive   *wayback.Client
	parser    *feed.Parser
	generator *feed.Generator
	feeds     *database.FeedRepository
	blogs     *database.BlogRepository
	posts     *database.PostRepository
}

func NewReconstructor(session *fetcher.Session, archive *wayback.Client, db *database.DB) *Reconstructor {
	return &Reconstructor{
		session:   session,
		archive:   archive,
		parser:    feed.NewParser(),
		generator: feed.NewGenerator(),
		feeds:     database.NewFeedRepository(db),
		blogs:     database.NewBlogRepository(db),
		posts:     database.NewPostRepository(db),
	}
}

// Reconstruct rebuilds the historical archive of one feed URL: validate the
// live feed, enumerate archive snapshots, merge snapshot, live and stored
// entries, enrich the new ones with full text, synthesize the output
// document and persist it.
func (r *Reconstructor) Reconstruct(ctx context.Context, feedURL string, opts Options, isUpdate bool) error {
	r.session.MaxRetries = opts.Retries

	body, err := r.session.Fetch(ctx, feedURL)
	if err != nil {
		return fmt.Errorf("failed to fetch live feed: %w", err)
	}
	liveDoc, err := r.parser.Parse(body, feedURL)
	if err != nil {
		return err
	}

	namespaces := make(map[string]string)
	mergeNamespaces(namespaces, liveDoc.Namespaces)

	settings := &database.Feed{
		ID:                    uuid.NewString(),
		Kind:                  string(liveDoc.Kind),
		URL:                   feedURL,
		Retries:               opts.Retries,
		SleepSeconds:          opts.SleepSeconds,
		EarliestEntry:         opts.EarliestEntry,
		LatestEntry:           opts.LatestEntry,
		IgnoreLiveFeedEntries: opts.IgnoreLiveFeedEntries,
		Pretty:                opts.Pretty,
	}

	stored, err := r.feeds.GetFeedByURL(feedURL)
	if err != nil {
		return err
	}
	newlyCreated := stored == nil
	if !newlyCreated {
		if !isUpdate {
			return &ConflictError{URL: feedURL}
		}
		settings = stored
	}
	r.session.MaxRetries = settings.Retries

	// The discovery window bounds the archive search; the filter window is
	// the feed's configured earliest/latest bounds with nulls open, so an
	// update never drops previously archived posts from the output.
	now := time.Now().UTC()
	discoverFrom := parseISODate(settings.EarliestEntry, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	discoverTo := parseISODate(settings.LatestEntry, now)
	filterEarliest := parseISODatePtr(settings.EarliestEntry)
	filterLatest := parseISODatePtr(settings.LatestEntry)

	storedEntries := make(map[string]*feed.Entry)
	if !newlyCreated {
		latest, fullRSS, err := r.blogs.GetBlog(settings.ID)
		if err != nil {
			return err
		}
		if latest != nil && fullRSS != "" {
			dbDoc, err := r.parser.Parse([]byte(fullRSS), "db:blog_id="+settings.ID)
			if err != nil {
				slog.Warn("Failed to parse stored feed document, treating as empty", "blog_id", settings.ID, "error", err)
			} else {
				mergeNamespaces(namespaces, dbDoc.Namespaces)
				storedEntries = r.parser.Entries(dbDoc)
			}
			discoverFrom = *latest
		}
		discoverTo = now
	}

	snapshotEntries, err := r.collectSnapshots(ctx, feedURL, discoverFrom, discoverTo, namespaces)
	if err != nil {
		return err
	}

	if settings.IgnoreLiveFeedEntries && len(snapshotEntries) == 0 {
		return ErrNoArchive
	}

	liveEntries := r.parser.Entries(liveDoc)

	result := feed.Merge(snapshotEntries, liveEntries, storedEntries, settings.IgnoreLiveFeedEntries)
	merged := feed.FilterByWindow(result.Merged, filterEarliest, filterLatest)
	fresh := feed.FilterByWindow(result.New, filterEarliest, filterLatest)

	if len(fresh) > 0 {
		enricher := feed.NewEnricher(r.session, time.Duration(settings.SleepSeconds*float64(time.Second)))
		enriched := enricher.Enrich(ctx, fresh)
		slog.Info("Processed posts into full text", "url", feedURL, "enriched", enriched, "new", len(fresh))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	blog := &database.Blog{
		ID:          settings.ID,
		Title:       liveDoc.Metadata.Title,
		Description: liveDoc.Metadata.Description,
		Link:        liveDoc.Metadata.Link,
	}

	if len(merged) > 0 {
		sorted := feed.SortByCreatedDesc(merged)
		blog.FullRSS = r.generator.Run(liveDoc.Metadata, namespaces, sorted, settings.Pretty)
		blog.LatestPost = &sorted[0].Created
		blog.EarliestPost = &sorted[len(sorted)-1].Created
	} else {
		slog.Info("No posts in window", "url", feedURL)
	}

	// The feed row goes in before the blog row so the blog's foreign key
	// resolves; a run cancelled in between surfaces as a conflict next time.
	if newlyCreated {
		if err := r.feeds.AddFeed(settings); err != nil {
			return err
		}
	}
	if err := r.blogs.UpsertBlog(blog); err != nil {
		return err
	}
	if err := r.feeds.UpdateLastRun(settings.ID); err != nil {
		return err
	}
	if len(merged) > 0 {
		if err := r.posts.AddPosts(buildPosts(settings.ID, fresh)); err != nil {
			return err
		}
	}

	slog.Info("Reconstruction complete", "url", feedURL, "posts", len(merged), "new", len(fresh))

	return nil
}

// collectSnapshots enumerates unique archive captures in the window, fetches
// and parses each, and folds their entries together. Later captures
// overwrite earlier ones under the same link, so the freshest archived view
// of a post wins. A failing capture is logged and skipped.
func (r *Reconstructor) collectSnapshots(ctx context.Context, feedURL string, from, to time.Time, namespaces map[string]string) (map[string]*feed.Entry, error) {
	snapshots, err := r.archive.Search(ctx, feedURL, from.Format("20060102"), to.Format("20060102"))
	if err != nil {
		return nil, err
	}

	entries := make(map[string]*feed.Entry)
	for i, snapshot := range snapshots {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		slog.Info("Retrieving archived feed", "n", i+1, "total", len(snapshots), "timestamp", snapshot.Timestamp)

		body, err := r.session.Fetch(ctx, snapshot.FetchURL)
		if err != nil {
			slog.Warn("Failed to retrieve archived feed", "url", snapshot.FetchURL, "error", err)
			continue
		}
		doc, err := r.parser.Parse(body, snapshot.Timestamp)
		if err != nil {
			slog.Warn("Failed to parse archived feed", "timestamp", snapshot.Timestamp, "error", err)
			continue
		}

		mergeNamespaces(namespaces, doc.Namespaces)
		for link, entry := range r.parser.Entries(doc) {
			entries[link] = entry
		}
	}

	return entries, nil
}

func buildPosts(blogID string, entries map[string]*feed.Entry) []*database.Post {
	now := time.Now().UTC()
	posts := make([]*database.Post, 0, len(entries))
	for _, entry := range entries {
		posts = append(posts, &database.Post{
			ID:          uuid.NewString(),
			BlogID:      blogID,
			Title:       entry.Title,
			Link:        entry.Link,
			Author:      entry.Author,
			CreatedAt:   entry.Created,
			AddedAt:     now,
			Categories:  entry.Categories,
			Description: entry.Description,
			RawXML:      entry.RawXML,
		})
	}
	return posts
}

func mergeNamespaces(dst, src map[string]string) {
	for prefix, uri := range src {
		dst[prefix] = uri
	}
}

func parseISODate(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fallback
	}
	return t
}

func parseISODatePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
