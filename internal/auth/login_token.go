package auth

import (
	"time"

	"github.com/google/uuid"
)

// LoginToken is a one-time login record created when a user requests
// an OTP. A user can have any number of outstanding tokens.
//
// Tokens are not marked as consumed and carry no expiry, verifying the
// same token twice succeeds twice.
type LoginToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Redirect  string
	CreatedAt time.Time
}
