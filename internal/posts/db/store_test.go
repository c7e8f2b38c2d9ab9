package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/auth"
	authdb "github.com/willemschots/quill/internal/auth/db"
	"github.com/willemschots/quill/internal/db/testdb"
	"github.com/willemschots/quill/internal/errorz"
	"github.com/willemschots/quill/internal/posts"
	postdb "github.com/willemschots/quill/internal/posts/db"
)

// storeForTest returns a post store with a single user to act as author.
func storeForTest(t *testing.T) (*postdb.Store, auth.User) {
	t.Helper()

	sqlDB := testdb.RunWhile(t, true)

	user := auth.User{
		ID:        uuid.New(),
		Email:     "author@example.com",
		Name:      "Author",
		CreatedAt: time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC),
	}
	createUser(t, sqlDB, &user)

	return postdb.New(sqlDB), user
}

func createUser(t *testing.T, sqlDB *sql.DB, user *auth.User) {
	t.Helper()

	tx, err := authdb.New(sqlDB).BeginTx(context.Background())
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}

	if err := tx.CreateUser(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit tx: %v", err)
	}
}

func testPost(authorID uuid.UUID, title string, createdAt time.Time) posts.Post {
	return posts.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Body:      "body of " + title,
		CreatedAt: createdAt,
	}
}

func Test_Store_CreateFindPosts(t *testing.T) {
	t.Run("ok, create and find post", func(t *testing.T) {
		store, user := storeForTest(t)
		ctx := context.Background()

		post := testPost(user.ID, "hello", time.Date(2024, 5, 14, 10, 1, 0, 0, time.UTC))
		if err := store.CreatePost(ctx, &post); err != nil {
			t.Fatalf("failed to create post: %v", err)
		}

		got, err := store.FindPosts(ctx, &posts.PostFilter{
			IDs: []uuid.UUID{post.ID},
		})
		if err != nil {
			t.Fatalf("failed to find posts: %v", err)
		}

		if len(got) != 1 {
			t.Fatalf("got %d posts, want 1", len(got))
		}

		if got[0].ID != post.ID {
			t.Errorf("got id %v, want %v", got[0].ID, post.ID)
		}
		if got[0].AuthorID != post.AuthorID {
			t.Errorf("got author id %v, want %v", got[0].AuthorID, post.AuthorID)
		}
		if got[0].Title != post.Title {
			t.Errorf("got title %q, want %q", got[0].Title, post.Title)
		}
		if got[0].Body != post.Body {
			t.Errorf("got body %q, want %q", got[0].Body, post.Body)
		}
		if !got[0].CreatedAt.Equal(post.CreatedAt) {
			t.Errorf("got created at %v, want %v", got[0].CreatedAt, post.CreatedAt)
		}
	})

	t.Run("ok, newest first", func(t *testing.T) {
		store, user := storeForTest(t)
		ctx := context.Background()

		older := testPost(user.ID, "older", time.Date(2024, 5, 14, 10, 1, 0, 0, time.UTC))
		newer := testPost(user.ID, "newer", time.Date(2024, 5, 14, 10, 2, 0, 0, time.UTC))

		for _, p := range []posts.Post{older, newer} {
			p := p
			if err := store.CreatePost(ctx, &p); err != nil {
				t.Fatalf("failed to create post: %v", err)
			}
		}

		got, err := store.FindPosts(ctx, &posts.PostFilter{})
		if err != nil {
			t.Fatalf("failed to find posts: %v", err)
		}

		if len(got) != 2 {
			t.Fatalf("got %d posts, want 2", len(got))
		}

		if got[0].ID != newer.ID || got[1].ID != older.ID {
			t.Errorf("got order %q, %q, want %q, %q", got[0].Title, got[1].Title, newer.Title, older.Title)
		}
	})

	t.Run("ok, filter by author", func(t *testing.T) {
		store, user := storeForTest(t)
		ctx := context.Background()

		post := testPost(user.ID, "hello", time.Date(2024, 5, 14, 10, 1, 0, 0, time.UTC))
		if err := store.CreatePost(ctx, &post); err != nil {
			t.Fatalf("failed to create post: %v", err)
		}

		got, err := store.FindPosts(ctx, &posts.PostFilter{
			AuthorIDs: []uuid.UUID{uuid.New()},
		})
		if err != nil {
			t.Fatalf("failed to find posts: %v", err)
		}

		if len(got) != 0 {
			t.Fatalf("got %d posts, want 0", len(got))
		}
	})

	t.Run("fail, unknown author", func(t *testing.T) {
		store, _ := storeForTest(t)

		post := testPost(uuid.New(), "orphan", time.Date(2024, 5, 14, 10, 1, 0, 0, time.UTC))

		err := store.CreatePost(context.Background(), &post)
		if !errors.Is(err, errorz.ErrConstraintViolated) {
			t.Fatalf("expected error %v, got %v", errorz.ErrConstraintViolated, err)
		}
	})

	t.Run("fail, zero uuid", func(t *testing.T) {
		store, user := storeForTest(t)

		post := testPost(user.ID, "hello", time.Date(2024, 5, 14, 10, 1, 0, 0, time.UTC))
		post.ID = uuid.Nil

		err := store.CreatePost(context.Background(), &post)
		if !errors.Is(err, errorz.ErrConstraintViolated) {
			t.Fatalf("expected error %v, got %v", errorz.ErrConstraintViolated, err)
		}
	})
}
