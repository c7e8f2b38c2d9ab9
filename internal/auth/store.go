package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/email"
)

// UserFilter is used to filter users.
// Returned users must match all the provided fields.
// If a field is empty or nil, it's ignored.
type UserFilter struct {
	IDs    []uuid.UUID
	Emails []email.Address
}

// LoginTokenFilter is used to filter login tokens.
// Returned tokens must match all the provided fields.
// If a field is empty or nil, it's ignored.
type LoginTokenFilter struct {
	IDs     []uuid.UUID
	UserIDs []uuid.UUID
	// OwnerEmails matches tokens whose owning user has one of the
	// provided email addresses.
	OwnerEmails []email.Address
}

// Store provides access to the user store.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a transaction. If an error occurs on any of the Create/Find methods,
// the transaction is considered to have failed and should be rolled back.
// Tx is not safe for concurrent use.
type Tx interface {
	Commit() error
	Rollback() error

	CreateUser(u *User) error
	FindUsers(filter *UserFilter) ([]User, error)

	CreateLoginToken(t *LoginToken) error
	FindLoginTokens(filter *LoginTokenFilter) ([]LoginToken, error)
}
