// internal/infra/telegram/channel.go
package telegram

import (
	"context"
	"fmt"
	"strconv"

	"assignment_notifier_bot/internal/domain/delivery"

	"gopkg.in/telebot.v3"
)

// Telegram caps messages at 4096 characters.
const maxMessageLength = 4096

// ChannelAdapter implements the delivery.Channel interface on top of
// gopkg.in/telebot.v3. Destinations are decimal chat IDs.
type ChannelAdapter struct {
	bot *telebot.Bot
}

var _ delivery.Channel = (*ChannelAdapter)(nil)

func NewChannelAdapter(b *telebot.Bot) *ChannelAdapter {
	return &ChannelAdapter{bot: b}
}

func (a *ChannelAdapter) Send(ctx context.Context, destination, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram destination %q: %w", destination, err)
	}

	_, err = a.bot.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{
		DisableWebPagePreview: true,
	})
	return err
}

func (a *ChannelAdapter) MaxMessageLength() int {
	return maxMessageLength
}
