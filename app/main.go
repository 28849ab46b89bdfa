package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/mohamedmoataz-oacc/history4feed/app/cfg"
	"github.com/mohamedmoataz-oacc/history4feed/app/database"
	"github.com/mohamedmoataz-oacc/history4feed/app/feed"
	"github.com/mohamedmoataz-oacc/history4feed/app/fetcher"
	"github.com/mohamedmoataz-oacc/history4feed/app/logging"
	"github.com/mohamedmoataz-oacc/history4feed/app/pipeline"
	"github.com/mohamedmoataz-oacc/history4feed/app/wayback"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A .env file adjacent to the binary may hold the proxy API key.
	_ = godotenv.Load(".env")

	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if config == nil {
		// Help was requested.
		return 0
	}

	if err := logging.Setup(config.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	slog.Info("Starting", "version", config.Version)

	db, err := database.Open(config.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", config.DBPath, "error", err)
		return 1
	}
	defer db.Close()

	if _, _, err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case config.List:
		return listFeeds(db)
	case config.URL != "" && config.Delete:
		return deleteFeed(db, config.URL)
	case config.URL != "":
		return reconstruct(ctx, db, config)
	default:
		return updateAll(ctx, db, config)
	}
}

func newReconstructor(db *database.DB, config *cfg.Cfg) *pipeline.Reconstructor {
	session := fetcher.NewSession(config.UserAgent, true)
	return pipeline.NewReconstructor(session, wayback.NewClient(session), db)
}

func reconstruct(ctx context.Context, db *database.DB, config *cfg.Cfg) int {
	opts := pipeline.Options{
		EarliestEntry:         config.EarliestEntry,
		LatestEntry:           config.LatestEntry,
		IgnoreLiveFeedEntries: config.IgnoreLiveFeedEntries,
		Pretty:                config.Pretty,
		Retries:               config.Retries,
		SleepSeconds:          config.SleepSeconds,
	}

	err := newReconstructor(db, config).Reconstruct(ctx, config.URL, opts, false)
	if err == nil {
		return 0
	}

	var unknownType *feed.UnknownFeedTypeError
	if errors.As(err, &unknownType) {
		slog.Error("The URL entered does not resolve to a valid RSS or Atom feed. Please enter a valid RSS or Atom feed URL", "url", config.URL)
	} else {
		slog.Error("Failed", "error", err)
	}
	return 1
}

func updateAll(ctx context.Context, db *database.DB, config *cfg.Cfg) int {
	if err := newReconstructor(db, config).UpdateAll(ctx); err != nil {
		slog.Error("Failed", "error", err)
		return 1
	}
	return 0
}

func deleteFeed(db *database.DB, url string) int {
	deleted, err := database.NewFeedRepository(db).DeleteFeedByURL(url)
	if err != nil {
		slog.Error("Failed to delete feed", "url", url, "error", err)
		return 1
	}
	slog.Info("Deleted feed", "url", url, "feeds_removed", deleted)
	return 0
}

func listFeeds(db *database.DB) int {
	feeds, err := database.NewFeedRepository(db).GetFeedList()
	if err != nil {
		slog.Error("Failed to list feeds", "error", err)
		return 1
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FEED ID\tKIND\tURL\tLAST RUN\tEARLIEST POST\tLATEST POST")
	for _, row := range feeds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.FeedID, row.Kind, row.URL,
			formatTimeCell(row.LastRunAt), formatTimeCell(row.EarliestPost), formatTimeCell(row.LatestPost))
	}
	w.Flush()

	return 0
}

func formatTimeCell(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
