package feed

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindRSS  Kind = "rss"
	KindAtom Kind = "atom"
)

// Metadata is the channel-level metadata of a parsed feed.
type Metadata struct {
	Title       string
	Description string
	Link        string
}

// Entry is a single post extracted from a feed document. Link doubles as the
// logical deduplication key during merging; RawXML holds the pre-enrichment
// serialization of the source entry element.
type Entry struct {
	Link        string
	Title       string
	Author      string
	Created     time.Time
	Categories  []string
	Description string
	RawXML      string
}

// MergeResult is the outcome of merging snapshot, live and stored entries.
// New holds the subset not previously persisted; only those flow to
// full-text enrichment.
type MergeResult struct {
	Merged map[string]*Entry
	New    map[string]*Entry
}

// UnknownFeedTypeError reports input that does not parse as RSS or Atom.
type UnknownFeedTypeError struct {
	Source string
	Reason string
}

func (e *UnknownFeedTypeError) Error() string {
	return fmt.Sprintf("failed to parse feed from `%s`: %s", e.Source, e.Reason)
}

// ExtractionError reports that the article extractor produced nothing usable
// for a page, as distinct from a network failure fetching it.
type ExtractionError struct {
	URL    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error processing fulltext for `%s`: %s", e.URL, e.Reason)
}
