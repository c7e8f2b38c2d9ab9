package web

import (
	"context"
	"net/http"

	"github.com/willemschots/quill/internal/session"
)

// identify is a middleware that resolves the caller's identity from the
// session cookie, once per request. Requests without a cookie, or with a
// credential that fails verification, proceed as anonymous. That's
// intentional, endpoints decide themselves whether they need a user.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential, ok := session.FromRequest(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.deps.Signer.Verify(credential)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithClaims(r.Context(), claims)))
	})
}

type ctxKey string

const claimsCtxKey ctxKey = "quillClaims"

func ctxWithClaims(ctx context.Context, claims session.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// ClaimsFromContext returns the verified claims of the caller, if any.
func ClaimsFromContext(ctx context.Context) (session.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(session.Claims)
	return claims, ok
}
