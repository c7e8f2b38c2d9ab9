// Package auth implements the passwordless authentication flow:
// a user registers, requests a one-time login link via email and
// exchanges the link for a signed session credential.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/willemschots/quill/internal/email"
	"github.com/willemschots/quill/internal/errorz"
	"github.com/willemschots/quill/internal/session"
)

var (
	// ErrDuplicateUser indicates a registration for an email address
	// that already has a user.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidToken indicates a verification hash that is malformed
	// or doesn't match a stored login token.
	ErrInvalidToken = errors.New("invalid token")
)

// LoginMailer sends login links to users.
type LoginMailer interface {
	SendLoginLink(ctx context.Context, to email.Address, hash string) error
}

// Service is the type that provides the main rules for authentication.
type Service struct {
	store  Store
	mailer LoginMailer
	signer *session.Signer

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store, mailer LoginMailer, signer *session.Signer) *Service {
	return &Service{
		store:   s,
		mailer:  mailer,
		signer:  signer,
		NowFunc: time.Now,
	}
}

// Registration is the input for RegisterUser.
type Registration struct {
	Email email.Address
	Name  string
}

// RegisterUser creates a new user for the provided registration.
// If a user with the same email address already exists it fails with
// ErrDuplicateUser. The duplicate check is a precondition inside the
// same transaction as the insert, we don't rely on mapping driver
// specific constraint errors.
func (s *Service) RegisterUser(ctx context.Context, reg Registration) (User, error) {
	user := User{
		ID:        uuid.New(),
		Email:     reg.Email,
		Name:      reg.Name,
		CreatedAt: s.NowFunc(),
	}

	err := s.inTx(ctx, func(tx Tx) error {
		users, txErr := tx.FindUsers(&UserFilter{
			Emails: []email.Address{reg.Email},
		})
		if txErr != nil {
			return txErr
		}

		if len(users) > 0 {
			return ErrDuplicateUser
		}

		return tx.CreateUser(&user)
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// OTPRequest is the input for RequestOTP.
type OTPRequest struct {
	Email email.Address
	// Redirect is where the client wants to end up after verification.
	// It's stored with the token and returned verbatim by VerifyOTP.
	Redirect string
}

// RequestOTP creates a login token for the user with the provided email
// address and emails them a link containing the encoded token.
//
// It fails with errorz.ErrNotFound if no such user exists, in that case
// no email is sent.
//
// Every call creates an independent token and sends exactly one email,
// concurrent requests for the same user are not coordinated.
func (s *Service) RequestOTP(ctx context.Context, req OTPRequest) error {
	token := LoginToken{
		ID:        uuid.New(),
		Redirect:  req.Redirect,
		CreatedAt: s.NowFunc(),
	}

	err := s.inTx(ctx, func(tx Tx) error {
		users, txErr := tx.FindUsers(&UserFilter{
			Emails: []email.Address{req.Email},
		})
		if txErr != nil {
			return txErr
		}

		if len(users) != 1 {
			return errorz.ErrNotFound
		}

		token.UserID = users[0].ID

		return tx.CreateLoginToken(&token)
	})
	if err != nil {
		return err
	}

	// Sending could fail independently of the transaction. This is an
	// acceptable risk for now, the user can always request a new link.
	return s.mailer.SendLoginLink(ctx, req.Email, EncodeHash(token.ID, req.Email))
}

// Login is the result of a successful verification.
type Login struct {
	Redirect   string
	Credential string
}

// VerifyOTP exchanges a hash from a login link for a session credential.
// The hash must decode to a login token id and the email address of the
// token's owner, anything else fails with ErrInvalidToken.
//
// The token is deliberately left in place after verification, so the
// same hash verifies successfully more than once. Clients currently
// depend on this, login links double as bookmarkable re-login links.
func (s *Service) VerifyOTP(ctx context.Context, hash string) (Login, error) {
	tokenID, addr, err := DecodeHash(hash)
	if err != nil {
		return Login{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var login Login
	err = s.inTx(ctx, func(tx Tx) error {
		tokens, txErr := tx.FindLoginTokens(&LoginTokenFilter{
			IDs:         []uuid.UUID{tokenID},
			OwnerEmails: []email.Address{addr},
		})
		if txErr != nil {
			return txErr
		}

		if len(tokens) != 1 {
			return ErrInvalidToken
		}

		users, txErr := tx.FindUsers(&UserFilter{
			IDs: []uuid.UUID{tokens[0].UserID},
		})
		if txErr != nil {
			return txErr
		}

		if len(users) != 1 {
			return fmt.Errorf("login token %v references missing user", tokens[0].ID)
		}

		credential, txErr := s.signer.Sign(session.Claims{
			UserID: users[0].ID,
			Email:  users[0].Email,
		})
		if txErr != nil {
			return txErr
		}

		login = Login{
			Redirect:   tokens[0].Redirect,
			Credential: credential,
		}

		return nil
	})
	if err != nil {
		return Login{}, err
	}

	return login, nil
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	return tx.Commit()
}
