package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/mailersend/mailersend-go"
)

type mailSender interface {
	Send(ctx context.Context, message *mailersend.Message) (*mailersend.Response, error)
}

// MailerSend sends plain-text transactional email.
type MailerSend struct {
	email mailSender
	from  mailersend.From
}

func NewMailerSend(apiKey, fromEmail, fromName string) *MailerSend {
	ms := mailersend.NewMailersend(apiKey)
	return newMailerSend(ms.Email, fromEmail, fromName)
}

func newMailerSend(sender mailSender, fromEmail, fromName string) *MailerSend {
	return &MailerSend{
		email: sender,
		from:  mailersend.From{Name: fromName, Email: fromEmail},
	}
}

func (s *MailerSend) Send(ctx context.Context, m reservations.Message) error {
	if m.To == "" {
		return errors.New("recipient cannot be empty")
	}

	message := &mailersend.Message{}
	message.SetFrom(s.from)
	message.SetRecipients([]mailersend.Recipient{{Email: m.To}})
	message.SetSubject(m.Subject)
	message.SetText(m.Body)

	if _, err := s.email.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
