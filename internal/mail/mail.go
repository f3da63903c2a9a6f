// Package mail delivers verification codes over SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/wneessen/go-mail"

	"github.com/xenking/bookshelf-backend/internal/domain/user"
)

var _ user.Mailer = (*Sender)(nil)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Sender sends transactional mail through a single SMTP account.
type Sender struct {
	client *mail.Client
	from   string
}

// NewSender dials nothing yet; the client connects per message.
func NewSender(cfg Config) (*Sender, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating smtp client")
	}
	return &Sender{client: client, from: cfg.From}, nil
}

// SendVerificationCode mails the six digit code to the address.
func (s *Sender) SendVerificationCode(ctx context.Context, to, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return errors.Wrap(err, "setting from address")
	}
	if err := msg.To(to); err != nil {
		return errors.Wrap(err, "setting to address")
	}
	msg.Subject("Verification Code for Your Bookshelf Account")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your verification code is: %s\n\nEnter this code to verify your email address.\n", code,
	))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrapf(err, "sending verification mail to %q", to)
	}
	return nil
}
