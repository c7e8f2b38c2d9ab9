package posts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/errorz"
	"github.com/willemschots/quill/internal/errorz/testerr"
	"github.com/willemschots/quill/internal/posts"
)

func newSvcTest(t *testing.T) (*posts.Service, *testStore) {
	t.Helper()

	store := &testStore{}
	svc := posts.NewService(store)
	svc.NowFunc = func() time.Time {
		return time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	}

	return svc, store
}

func Test_Service_CreatePost(t *testing.T) {
	t.Run("ok, create post", func(t *testing.T) {
		svc, store := newSvcTest(t)

		np := posts.NewPost{
			AuthorID: uuid.New(),
			Title:    "Hello quill",
			Body:     "First post.",
		}

		post, err := svc.CreatePost(context.Background(), np)
		if err != nil {
			t.Fatalf("failed to create post: %v", err)
		}

		if post.ID == uuid.Nil {
			t.Errorf("expected a non-nil post id")
		}
		if post.AuthorID != np.AuthorID {
			t.Errorf("got author id %v, want %v", post.AuthorID, np.AuthorID)
		}
		if post.Title != np.Title {
			t.Errorf("got title %q, want %q", post.Title, np.Title)
		}

		if len(store.posts) != 1 {
			t.Fatalf("got %d stored posts, want 1", len(store.posts))
		}
	})

	t.Run("fail, missing fields", func(t *testing.T) {
		svc, store := newSvcTest(t)

		for name, np := range map[string]posts.NewPost{
			"no title": {AuthorID: uuid.New(), Body: "body"},
			"no body":  {AuthorID: uuid.New(), Title: "title"},
			"empty":    {AuthorID: uuid.New()},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := svc.CreatePost(context.Background(), np)

				var invalid errorz.InvalidInput
				if !errors.As(err, &invalid) {
					t.Fatalf("expected invalid input error, got %v", err)
				}

				if len(store.posts) != 0 {
					t.Fatalf("got %d stored posts, want 0", len(store.posts))
				}
			})
		}
	})

	t.Run("fail, store fails", func(t *testing.T) {
		svc, store := newSvcTest(t)
		store.err = testerr.Err

		_, err := svc.CreatePost(context.Background(), posts.NewPost{
			AuthorID: uuid.New(),
			Title:    "title",
			Body:     "body",
		})
		if !errors.Is(err, testerr.Err) {
			t.Fatalf("expected error %v, got %v", testerr.Err, err)
		}
	})
}

func Test_Service_GetPost(t *testing.T) {
	t.Run("ok, get post", func(t *testing.T) {
		svc, _ := newSvcTest(t)

		created, err := svc.CreatePost(context.Background(), posts.NewPost{
			AuthorID: uuid.New(),
			Title:    "title",
			Body:     "body",
		})
		if err != nil {
			t.Fatalf("failed to create post: %v", err)
		}

		got, err := svc.GetPost(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("failed to get post: %v", err)
		}

		if got != created {
			t.Errorf("got post %+v, want %+v", got, created)
		}
	})

	t.Run("fail, unknown post", func(t *testing.T) {
		svc, _ := newSvcTest(t)

		_, err := svc.GetPost(context.Background(), uuid.New())
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Fatalf("expected error %v, got %v", errorz.ErrNotFound, err)
		}
	})

	t.Run("fail, store fails", func(t *testing.T) {
		svc, store := newSvcTest(t)
		store.err = testerr.Err

		_, err := svc.GetPost(context.Background(), uuid.New())
		if !errors.Is(err, testerr.Err) {
			t.Fatalf("expected error %v, got %v", testerr.Err, err)
		}
	})
}

func Test_Service_ListPosts(t *testing.T) {
	svc, _ := newSvcTest(t)

	got, err := svc.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("failed to list posts: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d posts, want 0", len(got))
	}

	for _, title := range []string{"first", "second"} {
		_, err := svc.CreatePost(context.Background(), posts.NewPost{
			AuthorID: uuid.New(),
			Title:    title,
			Body:     "body",
		})
		if err != nil {
			t.Fatalf("failed to create post: %v", err)
		}
	}

	got, err = svc.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("failed to list posts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d posts, want 2", len(got))
	}
}

// testStore is an in-memory posts.Store.
type testStore struct {
	posts []posts.Post
	err   error
}

func (s *testStore) CreatePost(_ context.Context, p *posts.Post) error {
	if s.err != nil {
		return s.err
	}

	s.posts = append(s.posts, *p)
	return nil
}

func (s *testStore) FindPosts(_ context.Context, f *posts.PostFilter) ([]posts.Post, error) {
	if s.err != nil {
		return nil, s.err
	}

	out := make([]posts.Post, 0)
	for _, p := range s.posts {
		if len(f.IDs) > 0 && !contains(f.IDs, p.ID) {
			continue
		}
		if len(f.AuthorIDs) > 0 && !contains(f.AuthorIDs, p.AuthorID) {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
