package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const DefaultPath = "history4feed.sqlite"

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the sqlite database at path with foreign
// keys enforced, so feed deletion cascades to blogs and posts.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The store is single-writer per process.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}
