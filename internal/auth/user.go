package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/email"
)

// User contains the data for a user. Users are created on registration
// and are not modified or deleted by the auth flow afterwards.
type User struct {
	ID        uuid.UUID
	Email     email.Address
	Name      string
	CreatedAt time.Time
}
