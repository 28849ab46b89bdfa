package database

import (
	"time"
)

// Feed is the configuration of a reconstruction target. ID is opaque and
// immutable; URL is unique across feeds.
type Feed struct {
	ID                    string
	Kind                  string // rss or atom
	URL                   string
	CreatedAt             time.Time
	LastRunAt             *time.Time
	Retries               int
	SleepSeconds          float64
	EarliestEntry         string // ISO date, empty means unset
	LatestEntry           string // ISO date, empty means unset
	IgnoreLiveFeedEntries bool
	Pretty                bool
}

// Blog is the rendered view of a feed: its metadata, the observed post
// window, and the full serialized output document. Shares its ID with the
// owning feed.
type Blog struct {
	ID           string
	Title        string
	Description  string
	Link         string
	EarliestPost *time.Time
	LatestPost   *time.Time
	FullRSS      string
}

// Post is a single persisted entry. ID is opaque, assigned on first insert
// and never recomputed; (blog_id, link) is the logical dedup key during
// merging only.
type Post struct {
	ID          string
	BlogID      string
	Title       string
	Link        string
	Author      string
	CreatedAt   time.Time
	AddedAt     time.Time
	Categories  []string
	Description string
	RawXML      string
}

// FeedListRow is a joined feed+blog row for the list command and the bulk
// updater.
type FeedListRow struct {
	FeedID                string
	Kind                  string
	URL                   string
	LastRunAt             *time.Time
	EarliestPost          *time.Time
	LatestPost            *time.Time
	IgnoreLiveFeedEntries bool
	EarliestEntry         string
	LatestEntry           string
}
