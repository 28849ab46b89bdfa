package database

import (
	"database/sql"
	"fmt"
	"time"
)

// FeedRepository handles database operations for feeds.
type FeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// GetFeedByURL returns the feed for a URL, or nil when none exists.
func (r *FeedRepository) GetFeedByURL(url string) (*Feed, error) {
	var feed Feed
	var createdAt, lastRunAt, earliestEntry, latestEntry sql.NullString
	err := r.db.QueryRow(`
		SELECT id, kind, url, created_at, last_run_at, retries, sleep_seconds,
		       earliest_entry, latest_entry, ignore_live_feed_entries, pretty
		FROM feeds
		WHERE url = ?
	`, url).Scan(
		&feed.ID, &feed.Kind, &feed.URL, &createdAt, &lastRunAt,
		&feed.Retries, &feed.SleepSeconds, &earliestEntry, &latestEntry,
		&feed.IgnoreLiveFeedEntries, &feed.Pretty,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	if t := parseTime(createdAt); t != nil {
		feed.CreatedAt = *t
	}
	feed.LastRunAt = parseTime(lastRunAt)
	feed.EarliestEntry = earliestEntry.String
	feed.LatestEntry = latestEntry.String

	return &feed, nil
}

// AddFeed inserts a new feed row, stamping created_at and last_run_at. The
// URL unique constraint rejects collisions.
func (r *FeedRepository) AddFeed(feed *Feed) error {
	now := time.Now().UTC()
	feed.CreatedAt = now
	feed.LastRunAt = &now

	_, err := r.db.Exec(`
		INSERT INTO feeds (id, kind, url, created_at, last_run_at, retries, sleep_seconds,
		                   earliest_entry, latest_entry, ignore_live_feed_entries, pretty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, feed.ID, feed.Kind, feed.URL, formatTime(feed.CreatedAt), formatTimePtr(feed.LastRunAt),
		feed.Retries, feed.SleepSeconds, nullable(feed.EarliestEntry), nullable(feed.LatestEntry),
		feed.IgnoreLiveFeedEntries, feed.Pretty)

	if err != nil {
		return fmt.Errorf("failed to add feed: %w", err)
	}

	return nil
}

// DeleteFeedByURL removes the feed and, by cascade, its blog and posts.
// Returns the number of feed rows removed.
func (r *FeedRepository) DeleteFeedByURL(url string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM feeds WHERE url = ?`, url)
	if err != nil {
		return 0, fmt.Errorf("failed to delete feed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted feeds: %w", err)
	}

	return affected, nil
}

// UpdateLastRun bumps a feed's last_run_at to now.
func (r *FeedRepository) UpdateLastRun(feedID string) error {
	_, err := r.db.Exec(`UPDATE feeds SET last_run_at = ? WHERE id = ?`,
		formatTime(time.Now().UTC()), feedID)
	if err != nil {
		return fmt.Errorf("failed to update last run: %w", err)
	}
	return nil
}

// GetFeedList returns the joined feed+blog rows. Feeds without a blog row
// (a run cancelled between feed and blog insert) are not listed.
func (r *FeedRepository) GetFeedList() ([]FeedListRow, error) {
	rows, err := r.db.Query(`
		SELECT feeds.id, feeds.kind, feeds.url, feeds.last_run_at,
		       blogs.earliest_post, blogs.latest_post,
		       feeds.ignore_live_feed_entries, feeds.earliest_entry, feeds.latest_entry
		FROM feeds
		INNER JOIN blogs ON blogs.id = feeds.id
		ORDER BY feeds.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed list: %w", err)
	}
	defer rows.Close()

	var list []FeedListRow
	for rows.Next() {
		var row FeedListRow
		var lastRunAt, earliestPost, latestPost, earliestEntry, latestEntry sql.NullString
		err := rows.Scan(
			&row.FeedID, &row.Kind, &row.URL, &lastRunAt,
			&earliestPost, &latestPost,
			&row.IgnoreLiveFeedEntries, &earliestEntry, &latestEntry,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		row.LastRunAt = parseTime(lastRunAt)
		row.EarliestPost = parseTime(earliestPost)
		row.LatestPost = parseTime(latestPost)
		row.EarliestEntry = earliestEntry.String
		row.LatestEntry = latestEntry.String
		list = append(list, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return list, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
