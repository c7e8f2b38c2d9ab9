package web

import (
	"time"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/auth"
	"github.com/willemschots/quill/internal/email"
	"github.com/willemschots/quill/internal/posts"
)

// The types below decouple the wire format from the domain types.

type registerInput struct {
	Email email.Address `json:"email"`
	Name  string        `json:"name"`
}

type otpInput struct {
	Email    email.Address `json:"email"`
	Redirect string        `json:"redirect"`
}

type verifyInput struct {
	Hash string `schema:"hash,required"`
}

type newPostInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type userJSON struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func userToJSON(u auth.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     string(u.Email),
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

type claimsJSON struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type postJSON struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func postToJSON(p posts.Post) postJSON {
	return postJSON{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
	}
}

type redirectJSON struct {
	Redirect string `json:"redirect"`
}

type okJSON struct {
	OK bool `json:"ok"`
}

type errorJSON struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
