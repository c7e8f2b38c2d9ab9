// Package session issues and verifies the signed credentials that
// prove a caller's identity between requests.
//
// A credential is a compact JWT carrying the user id and email address.
// It is not persisted server side, validity is proven solely by the
// signature and the expiry timestamp.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/email"
	"github.com/willemschots/quill/internal/krypto"
)

// ErrInvalidCredential indicates a credential did not verify. The cause
// (bad signature, malformed structure or expiry) is deliberately not
// exposed to callers.
var ErrInvalidCredential = errors.New("invalid credential")

// Claims are the identity claims carried by a credential.
type Claims struct {
	UserID uuid.UUID     `json:"id"`
	Email  email.Address `json:"email"`
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SignerConfig is the configuration for the Signer.
type SignerConfig struct {
	// TTL is the duration a credential is valid after signing.
	TTL time.Duration
	// Issuer is recorded in the iss claim.
	Issuer string
}

// Signer signs and verifies credentials with a single symmetric key.
// Rotating the key invalidates all outstanding credentials, there is
// no revocation list.
type Signer struct {
	key krypto.Key
	cfg SignerConfig

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewSigner creates a Signer that signs with the provided key.
func NewSigner(key krypto.Key, cfg SignerConfig) *Signer {
	return &Signer{
		key:     key,
		cfg:     cfg,
		NowFunc: time.Now,
	}
}

// Sign issues a credential for the provided claims.
func (s *Signer) Sign(c Claims) (string, error) {
	now := s.NowFunc()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: string(c.Email),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   c.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	})

	raw, err := token.SignedString(s.key.SecretValue())
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}

	return raw, nil
}

// Verify checks the provided credential and returns the claims it carries.
// It fails with ErrInvalidCredential if the signature doesn't match, the
// structure is malformed or the credential has expired.
func (s *Signer) Verify(raw string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.key.SecretValue(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.NowFunc),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidCredential
	}

	userID, err := uuid.Parse(tc.Subject)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: bad subject", ErrInvalidCredential)
	}

	addr, err := email.ParseAddress(tc.Email)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: bad email claim", ErrInvalidCredential)
	}

	return Claims{
		UserID: userID,
		Email:  addr,
	}, nil
}
