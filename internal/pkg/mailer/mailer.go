// Package mailer renders and delivers transactional mail.
package mailer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"

	"properly.homes/backend/internal/app/appconfig"
)

type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// New returns an SMTP mailer, or a mailer that only logs when no SMTP host is configured.
func New(conf *appconfig.Config) (Mailer, error) {
	if conf.SMTPHost == "" {
		log.Warn().Str("evt.name", "mailer.log_only").Msg("SMTP host is not configured; mails will be logged instead of sent")
		return &LogMailer{}, nil
	}
	return NewSMTP(conf)
}

type SMTP struct {
	client *mail.Client
	from   string
}

func NewSMTP(conf *appconfig.Config) (*SMTP, error) {
	opts := []mail.Option{
		mail.WithPort(conf.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if conf.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(conf.SMTPUsername),
			mail.WithPassword(conf.SMTPPassword),
		)
	}
	client, err := mail.NewClient(conf.SMTPHost, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create smtp client")
	}
	return &SMTP{client: client, from: conf.MailFrom}, nil
}

func (s *SMTP) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return errors.Wrap(err, "set sender")
	}
	if err := m.To(msg.To); err != nil {
		return errors.Wrap(err, "set recipient")
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return errors.Wrap(err, "set reply-to")
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	return s.client.DialAndSendWithContext(ctx, m)
}

type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg *Message) error {
	log.Info().
		Str("evt.name", "mailer.logged").
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail not sent: log-only mailer")
	return nil
}
