package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/auth"
	"github.com/willemschots/quill/internal/db"
	"github.com/willemschots/quill/internal/email"
	"github.com/willemschots/quill/internal/errorz"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

func insertUser(ef execFunc, u *auth.User) error {
	if u.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	var q db.Query
	q.Unsafe(`INSERT INTO users (id, email, name, created_at) VALUES (`)
	q.Params(u.ID, string(u.Email), u.Name, u.CreatedAt)
	q.Unsafe(`)`)

	s, params := q.Get()

	_, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func selectUsers(qf queryFunc, f *auth.UserFilter) ([]auth.User, error) {
	var q db.Query
	q.Unsafe(`SELECT id, email, name, created_at FROM users WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.Emails) > 0 {
		q.Unsafe(`AND email IN (`)
		q.Params(anySlice(f.Emails)...)
		q.Unsafe(`) `)
	}

	q.Unsafe(`ORDER BY created_at ASC`)

	s, params := q.Get()

	rows, err := qf(s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]auth.User, 0)
	for rows.Next() {
		var u auth.User
		var addr string
		err := rows.Scan(&u.ID, &addr, &u.Name, &u.CreatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		// Emails are stored as they were provided, don't re-validate
		// them on the way out.
		u.Email = email.Address(addr)

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func insertLoginToken(ef execFunc, tok *auth.LoginToken) error {
	if tok.ID == uuid.Nil || tok.UserID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	var q db.Query
	q.Unsafe(`INSERT INTO login_tokens (id, user_id, redirect, created_at) VALUES (`)
	q.Params(tok.ID, tok.UserID, tok.Redirect, tok.CreatedAt)
	q.Unsafe(`)`)

	s, params := q.Get()

	_, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func selectLoginTokens(qf queryFunc, f *auth.LoginTokenFilter) ([]auth.LoginToken, error) {
	var q db.Query
	q.Unsafe(`SELECT id, user_id, redirect, created_at FROM login_tokens WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.UserIDs) > 0 {
		q.Unsafe(`AND user_id IN (`)
		q.Params(anySlice(f.UserIDs)...)
		q.Unsafe(`) `)
	}

	if len(f.OwnerEmails) > 0 {
		q.Unsafe(`AND user_id IN (SELECT id FROM users WHERE email IN (`)
		q.Params(anySlice(f.OwnerEmails)...)
		q.Unsafe(`)) `)
	}

	q.Unsafe(`ORDER BY created_at ASC`)

	s, params := q.Get()

	rows, err := qf(s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]auth.LoginToken, 0)
	for rows.Next() {
		var tok auth.LoginToken
		err := rows.Scan(&tok.ID, &tok.UserID, &tok.Redirect, &tok.CreatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, tok)
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
