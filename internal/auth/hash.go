package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/email"
)

// ErrMalformedHash indicates a hash could not be decoded.
var ErrMalformedHash = errors.New("malformed hash")

// EncodeHash encodes a login token id and email address into the opaque
// hash that is embedded in login links.
//
// The encoding is URL safe so the hash can be used in query parameters
// and path segments. It is transport obfuscation only, NOT a security
// boundary: anyone holding a hash can decode it.
func EncodeHash(tokenID uuid.UUID, addr email.Address) string {
	payload := fmt.Sprintf("%s:%s", tokenID, addr)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// DecodeHash decodes a hash produced by EncodeHash back into the token
// id and email address. It fails with ErrMalformedHash if the input is
// not a valid hash.
func DecodeHash(hash string) (uuid.UUID, email.Address, error) {
	raw, err := base64.RawURLEncoding.DecodeString(hash)
	if err != nil {
		return uuid.Nil, "", ErrMalformedHash
	}

	// The email address may itself contain a colon, so only split
	// on the first one.
	id, rawAddr, found := strings.Cut(string(raw), ":")
	if !found {
		return uuid.Nil, "", ErrMalformedHash
	}

	tokenID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, "", ErrMalformedHash
	}

	addr, err := email.ParseAddress(rawAddr)
	if err != nil {
		return uuid.Nil, "", ErrMalformedHash
	}

	return tokenID, addr, nil
}
