// Package web exposes the quill services over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/schema"

	"github.com/willemschots/quill/internal/auth"
	"github.com/willemschots/quill/internal/errorz"
	"github.com/willemschots/quill/internal/posts"
	"github.com/willemschots/quill/internal/session"
)

// errNoUser indicates an endpoint that needs an authenticated caller
// was called anonymously.
var errNoUser = errors.New("no authenticated user")

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	PostService *posts.Service
	Signer      *session.Signer
}

// ServerConfig is the configuration for the server.
type ServerConfig struct {
	// SecureCookie marks the session cookie as https-only.
	SecureCookie bool
	// AllowedOrigins is passed to the CORS middleware.
	AllowedOrigins []string
}

type Server struct {
	deps    *ServerDeps
	cfg     ServerConfig
	decoder *schema.Decoder
	handler http.Handler
}

func NewServer(deps *ServerDeps, cfg ServerConfig) *Server {
	s := &Server{
		deps:    deps,
		cfg:     cfg,
		decoder: schema.NewDecoder(),
	}
	s.decoder.IgnoreUnknownKeys(true)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(s.identify)

	// Most endpoints below are created using the map functions.
	// These return handlers that automatically map between HTTP
	// requests, target functions and HTTP responses. The request
	// mapping and response writing is customizable.

	r.Route("/api", func(r chi.Router) {
		// Register user endpoint.
		{
			h := mapBoth(s, s.registerUser)
			h.response(func(res result[registerInput, userJSON]) error {
				return res.s.writeJSON(res.w, http.StatusCreated, res.out)
			})
			r.Method(http.MethodPost, "/users", h)
		}

		// Request OTP endpoint.
		{
			h := mapBoth(s, s.requestOTP)
			r.Method(http.MethodPost, "/otp", h)
		}

		// Verify OTP endpoint.
		{
			h := mapQuery(s, s.verifyOTP)
			h.response(func(res result[verifyInput, auth.Login]) error {
				// The credential travels only as a cookie, the body
				// only tells the client where to go next.
				http.SetCookie(res.w, session.NewCookie(res.out.Credential, res.s.cfg.SecureCookie))
				return res.s.writeJSON(res.w, http.StatusOK, redirectJSON{
					Redirect: res.out.Redirect,
				})
			})
			r.Method(http.MethodGet, "/verify", h)
		}

		r.Get("/me", s.handleMe)

		// Post endpoints.
		r.Get("/posts", s.handleListPosts)
		r.Get("/posts/{postID}", s.handleGetPost)
		{
			h := mapBoth(s, s.createPost)
			h.response(func(res result[newPostInput, postJSON]) error {
				return res.s.writeJSON(res.w, http.StatusCreated, res.out)
			})
			r.Method(http.MethodPost, "/posts", h)
		}
	})

	s.handler = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// registerUser is the target function for the register endpoint.
func (s *Server) registerUser(ctx context.Context, in registerInput) (userJSON, error) {
	if in.Email == "" {
		return userJSON{}, errorz.InvalidInput{errorz.Keyed{Key: "email", Err: errors.New("is required")}}
	}
	if in.Name == "" {
		return userJSON{}, errorz.InvalidInput{errorz.Keyed{Key: "name", Err: errors.New("is required")}}
	}

	user, err := s.deps.AuthService.RegisterUser(ctx, auth.Registration{
		Email: in.Email,
		Name:  in.Name,
	})
	if err != nil {
		return userJSON{}, err
	}

	return userToJSON(user), nil
}

// requestOTP is the target function for the OTP endpoint.
func (s *Server) requestOTP(ctx context.Context, in otpInput) (okJSON, error) {
	if in.Email == "" {
		return okJSON{}, errorz.InvalidInput{errorz.Keyed{Key: "email", Err: errors.New("is required")}}
	}

	err := s.deps.AuthService.RequestOTP(ctx, auth.OTPRequest{
		Email:    in.Email,
		Redirect: in.Redirect,
	})
	if err != nil {
		return okJSON{}, err
	}

	return okJSON{OK: true}, nil
}

// verifyOTP is the target function for the verify endpoint.
func (s *Server) verifyOTP(ctx context.Context, in verifyInput) (auth.Login, error) {
	return s.deps.AuthService.VerifyOTP(ctx, in.Hash)
}

// createPost is the target function for the create post endpoint.
func (s *Server) createPost(ctx context.Context, in newPostInput) (postJSON, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return postJSON{}, errNoUser
	}

	post, err := s.deps.PostService.CreatePost(ctx, posts.NewPost{
		AuthorID: claims.UserID,
		Title:    in.Title,
		Body:     in.Body,
	})
	if err != nil {
		return postJSON{}, err
	}

	return postToJSON(post), nil
}

// handleMe returns the claims of the caller, or null for anonymous
// callers. It only reports what the credential contains, there is no
// store lookup.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		err := s.writeJSON(w, http.StatusOK, nil)
		if err != nil {
			s.handleError(w, r, err)
		}
		return
	}

	err := s.writeJSON(w, http.StatusOK, claimsJSON{
		ID:    claims.UserID,
		Email: string(claims.Email),
	})
	if err != nil {
		s.handleError(w, r, err)
	}
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	// An id that isn't a valid uuid can't match a post, report it the
	// same way as an unknown id.
	id, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		s.handleError(w, r, errorz.ErrNotFound)
		return
	}

	post, err := s.deps.PostService.GetPost(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	err = s.writeJSON(w, http.StatusOK, postToJSON(post))
	if err != nil {
		s.handleError(w, r, err)
	}
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	found, err := s.deps.PostService.ListPosts(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	out := make([]postJSON, 0, len(found))
	for _, p := range found {
		out = append(out, postToJSON(p))
	}

	err = s.writeJSON(w, http.StatusOK, out)
	if err != nil {
		s.handleError(w, r, err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg string) {
	err := s.writeJSON(w, status, errorJSON{
		Error: errorBody{
			Code:    code,
			Message: msg,
		},
	})
	if err != nil {
		s.deps.Logger.Error("failed to write error response", "error", err)
	}
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidInput errorz.InvalidInput

	switch {
	case errors.Is(err, auth.ErrDuplicateUser):
		s.writeError(w, http.StatusConflict, "conflict", "user already exists")
	case errors.Is(err, auth.ErrInvalidToken):
		s.writeError(w, http.StatusForbidden, "forbidden", "invalid token")
	case errors.Is(err, errorz.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, errNoUser):
		s.writeError(w, http.StatusUnauthorized, "unauthorized", "login required")
	case errors.As(err, &invalidInput):
		s.writeError(w, http.StatusBadRequest, "invalid_input", "invalid input")
	default:
		s.deps.Logger.Error("internal server error", "url", r.URL.String(), "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal", "something went wrong")
	}
}
