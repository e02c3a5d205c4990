// internal/infra/telegram/handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"assignment_notifier_bot/internal/app"
	"assignment_notifier_bot/internal/domain/delivery"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// detailRequestRe matches "details N" style follow-ups after a /check.
var detailRequestRe = regexp.MustCompile(`(?i)^(?:details|info|assignment)\s+(\d+)$`)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	digestService app.DigestService,
	horizonDays int,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "bot_commands")

	b.Handle("/start", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logger.WithFields(logrus.Fields{"command": "/start", "chat_id": chatID}).Info("Processing /start command")

		return c.Send(fmt.Sprintf(
			"Hello %s!\n\n"+
				"I'm your Canvas assignment notifier. I can send you daily summaries of upcoming assignments with time estimates.\n\n"+
				"Commands:\n"+
				"/check - Check for assignments due soon.\n"+
				"/ask <question> - Ask the AI assistant a question.\n"+
				"/help - Show help.\n\n"+
				"Your chat ID for scheduled digests is %d (set it as TELEGRAM_CHAT_ID).",
			c.Sender().FirstName, chatID))
	})

	b.Handle("/help", func(c telebot.Context) error {
		logger.WithFields(logrus.Fields{"command": "/help", "chat_id": c.Chat().ID}).Info("Processing /help command")

		return c.Send(
			"Available commands:\n" +
				"/start - Welcome message and your chat ID.\n" +
				"/check - Check for assignments due soon.\n" +
				"/ask <question> - Ask the AI assistant a question, e.g. /ask what is assignment [1] about?\n" +
				"/help - Show this message.\n\n" +
				"After a /check, send 'details N' to see the full information for assignment number N.\n" +
				"I also send a scheduled summary every morning if TELEGRAM_CHAT_ID is configured.")
	})

	b.Handle("/check", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := logger.WithFields(logrus.Fields{"command": "/check", "chat_id": chatID})
		logCtx.Info("Processing /check command")

		if err := c.Send(fmt.Sprintf("Checking Canvas for assignments due in the next %d days...", horizonDays)); err != nil {
			logCtx.WithError(err).Error("Failed to send acknowledgement")
		}
		_ = c.Notify(telebot.Typing)

		res := digestService.Run(ctx, strconv.FormatInt(chatID, 10))
		switch res.Status {
		case delivery.StatusAborted:
			logCtx.WithError(res.Err).Error("On-demand digest aborted")
			return c.Send("Could not reach Canvas right now. Please try again later.")
		case delivery.StatusPartial:
			logCtx.WithError(res.Err).Warnf("On-demand digest partially delivered (%d/%d chunks)", res.ChunksSent, res.ChunksTotal)
		default:
			logCtx.WithField("run_id", res.RunID).Info("On-demand digest delivered")
		}
		return nil
	})

	b.Handle("/ask", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := logger.WithFields(logrus.Fields{"command": "/ask", "chat_id": chatID})

		question := strings.TrimSpace(c.Message().Payload)
		if question == "" {
			return c.Send("Please provide a question after the /ask command.\nExample: /ask what is assignment [1] about?")
		}
		logCtx.Info("Processing /ask command")
		_ = c.Notify(telebot.Typing)

		answer, err := digestService.Ask(ctx, strconv.FormatInt(chatID, 10), question)
		if err != nil {
			logCtx.WithError(err).Error("Failed to answer question")
			return c.Send("Sorry, I encountered an error while trying to answer your question. Please try again later.")
		}
		return c.Send(answer)
	})

	// Non-command text: look for a "details N" follow-up.
	b.Handle(telebot.OnText, func(c telebot.Context) error {
		match := detailRequestRe.FindStringSubmatch(strings.TrimSpace(c.Text()))
		if match == nil {
			return nil
		}

		chatID := c.Chat().ID
		index, err := strconv.Atoi(match[1])
		if err != nil {
			return nil
		}
		logCtx := logger.WithFields(logrus.Fields{"chat_id": chatID, "index": index})
		logCtx.Info("Processing assignment detail request")

		_ = c.Notify(telebot.Typing)

		text, err := digestService.ResolveDetail(ctx, strconv.FormatInt(chatID, 10), index)
		switch {
		case errors.Is(err, app.ErrNoSession):
			return c.Send("I don't have a recent assignment list for this chat. Run /check first.")
		case errors.Is(err, app.ErrUnknownIndex):
			return c.Send(fmt.Sprintf("Assignment %d is not in the last /check results. Run /check to refresh the list.", index))
		case err != nil:
			logCtx.WithError(err).Error("Failed to resolve assignment detail")
			return c.Send("Something went wrong fetching those details. Please try again later.")
		}

		return c.Send(text, &telebot.SendOptions{DisableWebPagePreview: true})
	})
}
