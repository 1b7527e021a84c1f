package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/storyhub-api/internal/config"
)

// SMTPSender delivers notifications by email
type SMTPSender struct {
	addr    string
	auth    smtp.Auth
	from    string
	baseURL string
}

// NewSMTPSender creates an email sender from the notify configuration
func NewSMTPSender(cfg *config.NotifyConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPSender{
		addr:    net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		auth:    auth,
		from:    cfg.SMTPFrom,
		baseURL: cfg.FrontendURL,
	}
}

// Send renders msg and hands it to the SMTP server.
// smtp.SendMail has no context support, so the deadline is enforced around it.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return errors.New("recipient has no email address")
	}

	subject, body := Render(msg, s.baseURL)
	raw := buildEmail(s.from, msg.ToEmail, subject, body, time.Now())

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, s.auth, s.from, []string{msg.ToEmail}, raw)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildEmail assembles an RFC 5322 plain-text message
func buildEmail(from, to, subject, body string, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}
