package smtp

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"checkout/internal/entities"
	"checkout/internal/pkg/metrics"

	"github.com/wneessen/go-mail"
)

const serviceName = "smtp"

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	UseTLS    bool
	FromName  string
	FromEmail string
	ReplyTo   string
	Timeout   time.Duration
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer delivers over SMTP. There is no provider-side deduplication, so the
// idempotency key only ends up as a message header.
type Mailer struct {
	cfg    Config
	sender sender
}

func New(cfg Config) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.UseTLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return NewWithSender(cfg, client), nil
}

func NewWithSender(cfg Config, s sender) *Mailer {
	return &Mailer{cfg: cfg, sender: s}
}

func (m *Mailer) Send(ctx context.Context, email entities.Email) error {
	msg, err := m.buildMessage(email)
	if err != nil {
		return fmt.Errorf("%w: build message: %w", entities.ErrMailDelivery, err)
	}

	start := time.Now()
	err = m.sender.DialAndSendWithContext(ctx, msg)

	status := "OK"
	if err != nil {
		status = "ERROR"
	}
	metrics.GatewayRequestDuration.WithLabelValues(serviceName, "SendEmail", status).Observe(time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrMailDelivery, err)
	}
	return nil
}

func (m *Mailer) buildMessage(email entities.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if m.cfg.ReplyTo != "" {
		if err := msg.ReplyTo(m.cfg.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to: %w", err)
		}
	}
	if email.IdempotencyKey != "" {
		msg.SetGenHeader("X-Idempotency-Key", email.IdempotencyKey)
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTML)

	for _, a := range email.Attachments {
		if err := msg.AttachReader(a.Filename, bytes.NewReader(a.Content)); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}
	return msg, nil
}
