package db

import (
	"database/sql"

	"github.com/willemschots/quill/internal/auth"
)

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// CreateUser creates a user in the database.
func (t *Tx) CreateUser(u *auth.User) error {
	return insertUser(t.tx.Exec, u)
}

// FindUsers queries for users based on the provided filter.
// It returns an empty slice if no users are found.
func (t *Tx) FindUsers(filter *auth.UserFilter) ([]auth.User, error) {
	return selectUsers(t.tx.Query, filter)
}

// CreateLoginToken creates a login token in the database.
func (t *Tx) CreateLoginToken(tok *auth.LoginToken) error {
	return insertLoginToken(t.tx.Exec, tok)
}

// FindLoginTokens queries for login tokens based on the provided filter.
func (t *Tx) FindLoginTokens(filter *auth.LoginTokenFilter) ([]auth.LoginToken, error) {
	return selectLoginTokens(t.tx.Query, filter)
}
