// Package db implements the posts store on top of SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/db"
	"github.com/willemschots/quill/internal/errorz"
	"github.com/willemschots/quill/internal/posts"
)

// Store is responsible for interacting with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store.
func New(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

// CreatePost creates a post in the database.
func (s *Store) CreatePost(ctx context.Context, p *posts.Post) error {
	if p.ID == uuid.Nil || p.AuthorID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	var q db.Query
	q.Unsafe(`INSERT INTO posts (id, author_id, title, body, created_at) VALUES (`)
	q.Params(p.ID, p.AuthorID, p.Title, p.Body, p.CreatedAt)
	q.Unsafe(`)`)

	query, params := q.Get()

	_, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

// FindPosts queries for posts based on the provided filter.
// It returns an empty slice if no posts are found.
func (s *Store) FindPosts(ctx context.Context, f *posts.PostFilter) ([]posts.Post, error) {
	var q db.Query
	q.Unsafe(`SELECT id, author_id, title, body, created_at FROM posts WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.AuthorIDs) > 0 {
		q.Unsafe(`AND author_id IN (`)
		q.Params(anySlice(f.AuthorIDs)...)
		q.Unsafe(`) `)
	}

	q.Unsafe(`ORDER BY created_at DESC`)

	query, params := q.Get()

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]posts.Post, 0)
	for rows.Next() {
		var p posts.Post
		err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.CreatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func anySlice[T any](s []T) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}
