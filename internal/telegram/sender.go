// Package telegram mirrors outbound notifications into an operations chat.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the part of *tgbotapi.BotAPI the sender uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender posts every notification to one chat.
type Sender struct {
	Bot    BotAPI
	ChatID int64
}

// NewSender authorises the bot token.
func NewSender(token string, chatID int64) (*Sender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	return &Sender{Bot: bot, ChatID: chatID}, nil
}

func (s *Sender) Name() string { return "telegram" }

func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(s.ChatID, formatMessage(to, subject, body))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.LinkPreviewOptions = tgbotapi.LinkPreviewOptions{IsDisabled: true}
	_, err := s.Bot.Send(msg)
	return err
}

// formatMessage builds a Markdown (v1) message. Only the characters that
// open an entity in v1 are escaped.
func formatMessage(to, subject, body string) string {
	return fmt.Sprintf("*%s*\n_to: %s_\n\n%s", escapeMarkdown(subject), escapeMarkdown(to), escapeMarkdown(body))
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_",
		"*", "\\*",
		"`", "\\`",
		"[", "\\[",
	)
	return replacer.Replace(text)
}
