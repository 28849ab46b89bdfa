package wayback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/mohamedmoataz-oacc/history4feed/app/fetcher"
)

const (
	DefaultCDXURL     = "https://web.archive.org/cdx/search/cdx"
	DefaultArchiveURL = "https://web.archive.org/web"
)

// Snapshot is a single unique capture of a URL held by the archive.
type Snapshot struct {
	Timestamp string // YYYYMMDDhhmmss capture time
	FetchURL  string // URL returning the original, unmodified payload
}

// Client queries the archive's capture index. CDXURL and ArchiveURL are
// overridable for tests.
type Client struct {
	CDXURL     string
	ArchiveURL string
	Session    *fetcher.Session
}

func NewClient(session *fetcher.Session) *Client {
	return &Client{
		CDXURL:     DefaultCDXURL,
		ArchiveURL: DefaultArchiveURL,
		Session:    session,
	}
}

// Search enumerates unique captures of target between from and to (YYYYMMDD,
// inclusive), ordered by capture timestamp ascending. Captures are collapsed
// by content digest upstream; HTTP status of the capture is not filtered, so
// redirect captures are retained.
func (c *Client) Search(ctx context.Context, target, from, to string) ([]Snapshot, error) {
	q := url.Values{
		"url":      {target},
		"from":     {from},
		"to":       {to},
		"output":   {"json"},
		"fl":       {"timestamp,statuscode"},
		"collapse": {"digest"},
	}

	body, err := c.Session.Fetch(ctx, c.CDXURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to query capture index: %w", err)
	}

	if len(body) == 0 {
		return nil, nil
	}

	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode capture index response: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	// The first row is the field header.
	snapshots := make([]Snapshot, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Timestamp: row[0],
			FetchURL:  c.FetchURL(row[0], target),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp < snapshots[j].Timestamp
	})

	return snapshots, nil
}

// FetchURL builds the archive URL for a capture. The id_ flag requests the
// archived payload without any archive chrome injected.
func (c *Client) FetchURL(timestamp, target string) string {
	return fmt.Sprintf("%s/%sid_/%s", c.ArchiveURL, timestamp, target)
}
