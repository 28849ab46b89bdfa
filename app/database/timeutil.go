package database

import (
	"database/sql"
	"time"

	"github.com/araddon/dateparse"
)

// Timestamps are stored as ISO-8601 text and parsed back permissively.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := dateparse.ParseAny(s.String)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
