package database

import (
	"database/sql"
	"fmt"
	"time"
)

// BlogRepository handles database operations for blogs.
type BlogRepository struct {
	db *DB
}

func NewBlogRepository(db *DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// UpsertBlog inserts or replaces the blog row. A blog with nil window bounds
// and empty FullRSS is the no-op update written when a run yields no posts
// in-window.
func (r *BlogRepository) UpsertBlog(blog *Blog) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO blogs (id, title, description, link, earliest_post, latest_post, full_rss)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, blog.ID, blog.Title, blog.Description, blog.Link,
		formatTimePtr(blog.EarliestPost), formatTimePtr(blog.LatestPost), nullable(blog.FullRSS))
	if err != nil {
		return fmt.Errorf("failed to upsert blog: %w", err)
	}

	return nil
}

// GetBlog returns the stored latest-post timestamp and serialized feed
// document for a blog. A missing row yields nil and an empty document.
func (r *BlogRepository) GetBlog(blogID string) (*time.Time, string, error) {
	var latestPost, fullRSS sql.NullString
	err := r.db.QueryRow(`SELECT latest_post, full_rss FROM blogs WHERE id = ?`, blogID).
		Scan(&latestPost, &fullRSS)

	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get blog: %w", err)
	}

	return parseTime(latestPost), fullRSS.String, nil
}
