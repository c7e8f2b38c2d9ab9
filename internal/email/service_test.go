package email_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/willemschots/quill/internal/email"
)

func serviceForTest(t *testing.T) (*email.Service, *email.MemorySender) {
	t.Helper()

	from, err := email.ParseAddress("noreply@example.com")
	if err != nil {
		t.Fatalf("failed to parse from address: %v", err)
	}

	baseURL, err := url.Parse("https://app.example.com")
	if err != nil {
		t.Fatalf("failed to parse base url: %v", err)
	}

	sender := email.NewMemorySender()
	svc, err := email.NewService(sender, email.ServiceConfig{
		From:    from,
		BaseURL: baseURL,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	return svc, sender
}

func Test_Service_SendLoginLink(t *testing.T) {
	svc, sender := serviceForTest(t)

	recipient, err := email.ParseAddress("info@example.com")
	if err != nil {
		t.Fatalf("failed to parse recipient: %v", err)
	}

	err = svc.SendLoginLink(context.Background(), recipient, "aGFzaA")
	if err != nil {
		t.Fatalf("failed to send login link: %v", err)
	}

	if len(sender.Emails) != 1 {
		t.Fatalf("got %d emails, want 1", len(sender.Emails))
	}

	sent := sender.Emails[0]
	if sent.From != email.Address("noreply@example.com") {
		t.Errorf("got from %v, want noreply@example.com", sent.From)
	}
	if sent.Recipient != recipient {
		t.Errorf("got recipient %v, want %v", sent.Recipient, recipient)
	}
	if sent.Subject != "Your login link" {
		t.Errorf("got subject %q, want %q", sent.Subject, "Your login link")
	}

	wantLink := "https://app.example.com/verify?hash=aGFzaA"
	if !strings.Contains(sent.Body, wantLink) {
		t.Errorf("body does not contain link %q:\n%s", wantLink, sent.Body)
	}
	if !strings.Contains(sent.Body, string(recipient)) {
		t.Errorf("body does not mention recipient %v:\n%s", recipient, sent.Body)
	}
}

func Test_Service_SendLoginLink_EscapesHash(t *testing.T) {
	svc, sender := serviceForTest(t)

	recipient, err := email.ParseAddress("info@example.com")
	if err != nil {
		t.Fatalf("failed to parse recipient: %v", err)
	}

	err = svc.SendLoginLink(context.Background(), recipient, "a&b=c")
	if err != nil {
		t.Fatalf("failed to send login link: %v", err)
	}

	if len(sender.Emails) != 1 {
		t.Fatalf("got %d emails, want 1", len(sender.Emails))
	}

	if !strings.Contains(sender.Emails[0].Body, "hash=a%26b%3Dc") {
		t.Errorf("hash was not query escaped:\n%s", sender.Emails[0].Body)
	}
}
