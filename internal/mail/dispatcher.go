// Package mail delivers the weekly digest over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/j-veylop/weekly-report/internal/config"
	"github.com/j-veylop/weekly-report/internal/logger"
)

// ErrNoRecipients is returned when a dispatcher has nobody to send to.
var ErrNoRecipients = errors.New("no recipients configured")

// DeliveryError wraps any failure to hand the message to the SMTP server.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "failed to send email: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Sender delivers messages in a single SMTP session. *gomail.Client
// implements it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Message is the rendered digest.
type Message struct {
	Subject string
	HTML    string
	// Text is an optional plain-text alternative.
	Text string
}

// Dispatcher sends one message to a fixed recipient list.
type Dispatcher struct {
	from    string
	to      []string
	sender  Sender
	timeout time.Duration
}

// New creates a dispatcher sending through sender.
func New(cfg config.MailConfig, sender Sender) (*Dispatcher, error) {
	if len(cfg.To) == 0 {
		return nil, ErrNoRecipients
	}

	to := make([]string, len(cfg.To))
	copy(to, cfg.To)

	return &Dispatcher{
		from:    cfg.From,
		to:      to,
		sender:  sender,
		timeout: cfg.SendTimeout,
	}, nil
}

// NewClient builds an SMTP client for cfg. Port 465 uses implicit TLS;
// other ports upgrade with STARTTLS when the server offers it.
func NewClient(cfg config.SMTPConfig, timeout time.Duration) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	}
	if timeout > 0 {
		opts = append(opts, gomail.WithTimeout(timeout))
	}
	if cfg.ImplicitTLS() {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

// recipients returns a copy of the recipient list.
func (d *Dispatcher) recipients() []string {
	to := make([]string, len(d.to))
	copy(to, d.to)
	return to
}

// Send delivers msg to every recipient on a single To header. It does not
// retry; any failure is returned as a *DeliveryError.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	m, err := d.build(msg)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger.Debug("sending digest", "recipients", len(d.to), "subject", msg.Subject)
	if err := d.sender.DialAndSendWithContext(ctx, m); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}

func (d *Dispatcher) build(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(d.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", d.from, err)
	}
	if err := m.To(d.to...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()

	// Clients prefer the last alternative, so HTML goes after plain text.
	if msg.Text != "" {
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	} else {
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

// Confirm prints the delivery summary.
func (d *Dispatcher) Confirm(w io.Writer, modelCount int, period string) {
	to := d.recipients()
	fmt.Fprintf(w, "✅ Weekly report sent successfully to %d recipients:\n", len(to))
	for _, addr := range to {
		fmt.Fprintf(w, "   📧 %s\n", addr)
	}
	fmt.Fprintf(w, "📊 Report covers %d models\n", modelCount)
	fmt.Fprintf(w, "📅 Period: %s\n", period)
}
