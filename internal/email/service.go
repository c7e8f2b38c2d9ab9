package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"
)

const loginSubject = "Your login link"

// The body deliberately doesn't mention how long the link remains valid,
// that is decided by the auth flow, not by this package.
const loginBody = `Hello,

Someone requested a login link for {{.Recipient}}.

Follow this link to login:

{{.VerifyURL}}

If you did not request this link you can safely ignore this email.
`

// ServiceConfig is the configuration for the email Service.
type ServiceConfig struct {
	// From is the sender address used for all outgoing email.
	From Address
	// BaseURL is the public base URL of the app, login links are
	// constructed relative to it.
	BaseURL *url.URL
}

// Service sends the emails that quill needs to send. It renders
// the message and hands it to a Sender for delivery.
type Service struct {
	sender Sender
	cfg    ServiceConfig
	tmpl   *template.Template
}

// NewService creates a new email service on top of the provided sender.
func NewService(sender Sender, cfg ServiceConfig) (*Service, error) {
	tmpl, err := template.New("login").Parse(loginBody)
	if err != nil {
		return nil, fmt.Errorf("failed to parse login template: %w", err)
	}

	return &Service{
		sender: sender,
		cfg:    cfg,
		tmpl:   tmpl,
	}, nil
}

// SendLoginLink emails a login link for the provided hash to the recipient.
func (s *Service) SendLoginLink(ctx context.Context, recipient Address, hash string) error {
	verifyURL := s.cfg.BaseURL.JoinPath("/verify")
	q := verifyURL.Query()
	q.Set("hash", hash)
	verifyURL.RawQuery = q.Encode()

	var b strings.Builder
	err := s.tmpl.Execute(&b, struct {
		Recipient Address
		VerifyURL string
	}{
		Recipient: recipient,
		VerifyURL: verifyURL.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to render login email: %w", err)
	}

	return s.sender.Send(ctx, s.cfg.From, recipient, loginSubject, b.String())
}
