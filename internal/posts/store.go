package posts

import (
	"context"

	"github.com/google/uuid"
)

// PostFilter is used to filter posts.
// Returned posts must match all the provided fields.
// If a field is empty or nil, it's ignored.
type PostFilter struct {
	IDs       []uuid.UUID
	AuthorIDs []uuid.UUID
}

// Store provides access to the post store.
type Store interface {
	CreatePost(ctx context.Context, p *Post) error
	// FindPosts returns matching posts, newest first.
	FindPosts(ctx context.Context, filter *PostFilter) ([]Post, error)
}
