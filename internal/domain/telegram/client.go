package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
// The draw notification transport depends on this instead of *telebot.Bot.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
