package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

// ArgumentError reports an ill-formed command-line value, typically a date
// that does not parse as YYYY-MM-DD.
type ArgumentError struct {
	Name  string
	Value string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("unable to parse %s=%s as a date", e.Name, e.Value)
}

type rawCfg struct {
	// Primary modes
	URL    string `long:"url" description:"URL of the RSS or Atom feed to reconstruct, e.g. https://therecord.media/news/cybercrime/feed/. The feed is validated before any history is retrieved"`
	List   bool   `long:"list" description:"Show all existing feeds and the data held for each"`
	Delete bool   `long:"delete" description:"Delete the feed for --url and every blog entry associated with it"`

	// Reconstruction options
	EarliestEntry         string  `long:"earliest_entry" default:"2000-01-01" description:"Earliest record to scrape, YYYY-MM-DD"`
	LatestEntry           string  `long:"latest_entry" description:"Latest record to scrape, YYYY-MM-DD. Default is the run time"`
	IgnoreLiveFeedEntries bool    `long:"ignore_live_feed_entries" description:"Ignore any entries found on the live feed URL"`
	Pretty                bool    `long:"pretty" description:"Pretty-print the generated XML"`
	FullText              bool    `long:"full_text" description:"Convert potentially partial feeds into full text feeds (reserved; new posts are always enriched)"`
	Retries               int     `long:"retries" default:"3" description:"Number of retries when a non-200 response is returned"`
	SleepSeconds          float64 `long:"sleep_seconds" default:"2" description:"Seconds to sleep between article requests, to reduce servers blocking robotic requests"`

	// Application configuration
	DBPath    string `long:"db-path" env:"DB_PATH" default:"history4feed.sqlite" description:"Path to the sqlite database file"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"history4feed" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command-line flags and environment variables. A nil Cfg with a
// nil error means help was requested.
func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.URL != "" && raw.List {
		return nil, fmt.Errorf("--url and --list are mutually exclusive")
	}
	if raw.Delete && raw.URL == "" {
		return nil, fmt.Errorf("--delete requires --url")
	}

	if _, err := ParseDateArg(raw.EarliestEntry, "--earliest_entry"); err != nil {
		return nil, err
	}
	if _, err := ParseDateArg(raw.LatestEntry, "--latest_entry"); err != nil {
		return nil, err
	}

	cfg := &Cfg{
		URL:                   raw.URL,
		List:                  raw.List,
		Delete:                raw.Delete,
		EarliestEntry:         raw.EarliestEntry,
		LatestEntry:           raw.LatestEntry,
		IgnoreLiveFeedEntries: raw.IgnoreLiveFeedEntries,
		Pretty:                raw.Pretty,
		FullText:              raw.FullText,
		Retries:               raw.Retries,
		SleepSeconds:          raw.SleepSeconds,
		DBPath:                raw.DBPath,
		UserAgent:             raw.UserAgent,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}

	return cfg, nil
}

// ParseDateArg validates an ISO date flag and returns it in compact YYYYMMDD
// form. An empty value is passed through unchanged.
func ParseDateArg(value, name string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return "", &ArgumentError{Name: name, Value: value}
	}
	return t.Format("20060102"), nil
}
