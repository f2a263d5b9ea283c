// internal/infra/telegram/transport.go
package telegram

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"draw_notification_bot/internal/domain/notification"
	domainTelegram "draw_notification_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// Transport posts draw notifications to a Telegram chat. The recipient is the chat ID.
type Transport struct {
	client domainTelegram.Client
}

var _ notification.Transport = (*Transport)(nil)

func NewTransport(client domainTelegram.Client) *Transport {
	return &Transport{client: client}
}

func (t *Transport) Name() string {
	return "telegram"
}

func (t *Transport) Send(ctx context.Context, msg notification.Message, recipient string) error {
	chatID, err := strconv.ParseInt(strings.TrimSpace(recipient), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID %q: %w", recipient, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err = t.client.SendMessage(chatID, FormatMessage(msg), &telebot.SendOptions{
		ParseMode:             telebot.ModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to send Telegram message: %w", err)
	}
	return nil
}

// FormatMessage renders the subject in bold and the plain table as preformatted text,
// since Telegram only understands a small subset of HTML.
func FormatMessage(msg notification.Message) string {
	return fmt.Sprintf("<b>%s</b>\n<pre>%s</pre>",
		html.EscapeString(msg.Subject),
		html.EscapeString(strings.TrimRight(msg.PlainBody, "\n")))
}
