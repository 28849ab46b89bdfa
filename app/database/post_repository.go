package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostRepository handles database operations for posts.
type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// AddPosts inserts or replaces posts by identity in a single transaction.
func (r *PostRepository) AddPosts(posts []*Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO posts (id, blog_id, title, link, author, created_at, added_at,
		                              categories, description, raw_xml)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, post := range posts {
		categories, err := json.Marshal(post.Categories)
		if err != nil {
			return fmt.Errorf("failed to encode categories: %w", err)
		}
		_, err = stmt.Exec(post.ID, post.BlogID, post.Title, post.Link, post.Author,
			formatTime(post.CreatedAt), formatTime(post.AddedAt),
			string(categories), post.Description, post.RawXML)
		if err != nil {
			return fmt.Errorf("failed to insert post `%s`: %w", post.Link, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit posts: %w", err)
	}

	return nil
}

// GetPostsByBlog returns all posts of a blog.
func (r *PostRepository) GetPostsByBlog(blogID string) ([]Post, error) {
	rows, err := r.db.Query(`
		SELECT id, blog_id, COALESCE(title, ''), COALESCE(link, ''), COALESCE(author, ''),
		       created_at, added_at, categories, COALESCE(description, ''), COALESCE(raw_xml, '')
		FROM posts
		WHERE blog_id = ?
		ORDER BY created_at DESC
	`, blogID)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		var createdAt, addedAt sql.NullString
		var categories string
		err := rows.Scan(
			&post.ID, &post.BlogID, &post.Title, &post.Link, &post.Author,
			&createdAt, &addedAt, &categories, &post.Description, &post.RawXML,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		if t := parseTime(createdAt); t != nil {
			post.CreatedAt = *t
		}
		if t := parseTime(addedAt); t != nil {
			post.AddedAt = *t
		}
		if err := json.Unmarshal([]byte(categories), &post.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode categories: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}
