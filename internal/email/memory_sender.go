package email

import "context"

// MemorySender is a Sender that keeps emails in memory, it's used in tests.
type MemorySender struct {
	Emails []Email
}

// Email is a single email as sent to the MemorySender.
type Email struct {
	From      Address
	Recipient Address
	Subject   string
	Body      string
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, from, recipient Address, subject, body string) error {
	s.Emails = append(s.Emails, Email{
		From:      from,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})
	return nil
}
