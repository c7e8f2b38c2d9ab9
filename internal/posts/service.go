// Package posts provides retrieval and creation of blog posts.
package posts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/errorz"
)

// Service provides the main rules for working with posts.
type Service struct {
	store Store

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store) *Service {
	return &Service{
		store:   s,
		NowFunc: time.Now,
	}
}

// GetPost returns the post with the provided id.
// It fails with errorz.ErrNotFound if no such post exists.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (Post, error) {
	found, err := s.store.FindPosts(ctx, &PostFilter{
		IDs: []uuid.UUID{id},
	})
	if err != nil {
		return Post{}, err
	}

	if len(found) != 1 {
		return Post{}, errorz.ErrNotFound
	}

	return found[0], nil
}

// ListPosts returns all posts, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]Post, error) {
	return s.store.FindPosts(ctx, &PostFilter{})
}

// NewPost is the input for CreatePost.
type NewPost struct {
	AuthorID uuid.UUID
	Title    string
	Body     string
}

// CreatePost creates a new post for the provided author.
func (s *Service) CreatePost(ctx context.Context, np NewPost) (Post, error) {
	var invalid errorz.InvalidInput
	if np.Title == "" {
		invalid = append(invalid, errorz.Keyed{Key: "Title", Err: errors.New("is required")})
	}
	if np.Body == "" {
		invalid = append(invalid, errorz.Keyed{Key: "Body", Err: errors.New("is required")})
	}
	if len(invalid) > 0 {
		return Post{}, invalid
	}

	post := Post{
		ID:        uuid.New(),
		AuthorID:  np.AuthorID,
		Title:     np.Title,
		Body:      np.Body,
		CreatedAt: s.NowFunc(),
	}

	err := s.store.CreatePost(ctx, &post)
	if err != nil {
		return Post{}, err
	}

	return post, nil
}
