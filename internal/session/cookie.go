package session

import "net/http"

// CookieName is the name of the cookie that carries the credential.
const CookieName = "token"

// NewCookie wraps a credential in the cookie that clients send back
// on subsequent requests. The cookie itself carries no expiry, the
// credential embeds its own.
func NewCookie(credential string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    credential,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromRequest returns the credential from the request cookie, if present.
func FromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	return c.Value, true
}
