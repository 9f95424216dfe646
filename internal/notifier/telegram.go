package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
)

var (
	// errBotTokenRequired is returned when the bot token is empty.
	errBotTokenRequired = errors.New("telegram bot token must be provided")
	// errChatIDRequired is returned when the chat id is empty.
	errChatIDRequired = errors.New("telegram chat id must be provided")
)

// Telegram sends notifications as plain text messages to one chat.
type Telegram struct {
	bot    *bot.Bot
	chatID string
}

// NewTelegram creates a Telegram notifier.
// Extra options are passed to the bot client, e.g. bot.WithServerURL in tests.
func NewTelegram(token, chatID string, options ...bot.Option) (*Telegram, error) {
	if token == "" {
		return nil, errBotTokenRequired
	}

	if chatID == "" {
		return nil, errChatIDRequired
	}

	// The token is checked on the first delivery, not at startup.
	options = append([]bot.Option{bot.WithSkipGetMe()}, options...)

	b, err := bot.New(token, options...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{
		bot:    b,
		chatID: chatID,
	}, nil
}

// Notify sends the message. The severity is already part of the text.
func (t *Telegram) Notify(ctx context.Context, _ Severity, message string) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   message,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
