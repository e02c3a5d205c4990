package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"assignment_notifier_bot/internal/app"
	"assignment_notifier_bot/internal/infra/canvas"
	"assignment_notifier_bot/internal/infra/config"
	"assignment_notifier_bot/internal/infra/logger"
	"assignment_notifier_bot/internal/infra/ollama"
	"assignment_notifier_bot/internal/infra/scheduler"
	itelegram "assignment_notifier_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	log.Infof("Configuration loaded. Environment: %s, Timezone: %s, DaysAhead: %d",
		cfg.Environment, cfg.Timezone, cfg.DaysAhead)

	if cfg.TelegramToken == "" {
		log.Fatal("FATAL: TELEGRAM_BOT_TOKEN is not set")
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Canvas source
	canvasClient := canvas.NewClient(cfg.CanvasAPIURL, cfg.CanvasAPIToken, cfg.Timezone, log.WithField("component", "canvas"))
	verifyCtx, verifyCancel := context.WithTimeout(rootCtx, 30*time.Second)
	if err := canvasClient.VerifyConnection(verifyCtx); err != nil {
		verifyCancel()
		log.Fatalf("FATAL: Could not connect to Canvas: %v", err)
	}
	verifyCancel()

	// Model endpoint and estimator
	ollamaClient := ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel)
	estimator := app.NewEstimator(ollamaClient, log.WithField("component", "estimator"))
	log.Infof("Estimator initialized with model %q at %s", cfg.OllamaModel, cfg.OllamaHost)

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithError(err)
			if c != nil && c.Chat() != nil {
				entry = entry.WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telebot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}

	// Digest pipeline
	channel := itelegram.NewChannelAdapter(bot)
	sessions := app.NewSessionStore()
	digestService := app.NewDigestService(
		canvasClient, estimator, channel, sessions,
		cfg.Timezone, cfg.DaysAhead,
		log.WithField("component", "digest"),
	)
	log.Info("Digest service initialized.")

	// Daily schedule
	var digestScheduler *scheduler.DigestScheduler
	if cfg.TelegramChatID != 0 {
		digestScheduler = scheduler.NewDigestScheduler(
			rootCtx,
			digestService,
			strconv.FormatInt(cfg.TelegramChatID, 10),
			cfg.CheckHour, cfg.CheckMinute, cfg.Timezone,
			log.WithField("component", "scheduler"),
		)
		if err := digestScheduler.Start(); err != nil {
			log.Fatalf("FATAL: Could not start scheduler: %v", err)
		}
		log.Infof("Scheduled daily digest for chat %d at %02d:%02d (%s)",
			cfg.TelegramChatID, cfg.CheckHour, cfg.CheckMinute, cfg.Timezone)
	} else {
		log.Warn("TELEGRAM_CHAT_ID not set - scheduled daily digests are disabled")
	}

	itelegram.RegisterBotCommands(rootCtx, bot, digestService, cfg.DaysAhead, log.WithField("component", "telegram"))
	log.Info("Bot command handlers registered.")

	go bot.Start()
	log.Info("Bot is now running. Press Ctrl+C to stop.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel() // Stops new chunks/runs; in-flight sends finish on their own.
	if digestScheduler != nil {
		digestScheduler.Stop()
	}
	bot.Stop()
	log.Info("Application shut down gracefully.")
}
