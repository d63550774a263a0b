package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/hoangchien/portfolio/internal/breaker"
	"github.com/hoangchien/portfolio/internal/config"
)

// SMTPSender delivers messages through an SMTP relay such as Gmail.
type SMTPSender struct {
	cfg config.MailConfig
	cb  *gobreaker.CircuitBreaker[struct{}]
	now func() time.Time
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(cfg config.MailConfig, logger *slog.Logger) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPSender{
		cfg: cfg,
		cb:  breaker.New[struct{}]("smtp", breaker.Settings{ConsecutiveFailures: 3, Timeout: time.Minute}, logger),
		now: time.Now,
	}
}

// Send delivers msg to the configured recipient. While the breaker is open
// sends fail immediately.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	_, err := s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.send(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("mail: sending contact message: %w", err)
	}
	return nil
}

func (s *SMTPSender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.Username
}

func (s *SMTPSender) send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if s.cfg.StartTLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starting TLS: %w", err)
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	from := s.from()
	to := s.cfg.MailRecipient()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("starting message: %w", err)
	}
	if _, err := w.Write(build(envelope{from: from, to: to, date: s.now()}, msg)); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}

	// The message is accepted once DATA completes; a failed QUIT is not an error.
	_ = client.Quit()
	return nil
}
