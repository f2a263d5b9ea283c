// internal/infra/mail/smtp_transport.go
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"draw_notification_bot/internal/domain/notification"

	"github.com/jordan-wright/email"
)

const senderName = "Express Entry Draw Tracker"

// Config holds the mail relay connection settings.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	ImplicitTLS bool // SMTPS (usually port 465); otherwise STARTTLS when the server offers it
}

// SMTPTransport sends notifications as multipart (plain + HTML) email.
type SMTPTransport struct {
	cfg     Config
	deliver func(e *email.Email) error
}

var _ notification.Transport = (*SMTPTransport)(nil)

func NewSMTPTransport(cfg Config) *SMTPTransport {
	t := &SMTPTransport{cfg: cfg}
	t.deliver = t.sendViaRelay
	return t
}

func (t *SMTPTransport) Name() string {
	return "smtp"
}

// Send delivers msg to recipient. The relay client has no context support, so
// the send runs in its own goroutine and is abandoned when ctx is done.
func (t *SMTPTransport) Send(ctx context.Context, msg notification.Message, recipient string) error {
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("no recipient address")
	}
	e := t.newEmail(msg, recipient)

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("smtp delivery panicked: %v", r)
			}
		}()
		done <- t.deliver(e)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email not confirmed before deadline: %w", ctx.Err())
	}
}

func (t *SMTPTransport) newEmail(msg notification.Message, recipient string) *email.Email {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", senderName, t.cfg.From)
	e.To = []string{recipient}
	e.Subject = msg.Subject
	e.Text = []byte(msg.PlainBody)
	if msg.HTMLBody != "" {
		e.HTML = []byte(msg.HTMLBody)
	}
	return e
}

func (t *SMTPTransport) sendViaRelay(e *email.Email) error {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))

	var auth smtp.Auth
	if t.cfg.Username != "" {
		auth = smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	}

	if t.cfg.ImplicitTLS {
		return e.SendWithTLS(addr, auth, &tls.Config{ServerName: t.cfg.Host})
	}

	err := e.Send(addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		// Local relays often accept unauthenticated mail.
		return e.Send(addr, nil)
	}
	return err
}
