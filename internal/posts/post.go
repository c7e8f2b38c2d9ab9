package posts

import (
	"time"

	"github.com/google/uuid"
)

// Post is a single blog post.
type Post struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Title     string
	Body      string
	CreatedAt time.Time
}
