// The headless variant: no bot, just the daily digest delivered through an
// email-to-SMS carrier gateway.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assignment_notifier_bot/internal/app"
	"assignment_notifier_bot/internal/infra/canvas"
	"assignment_notifier_bot/internal/infra/config"
	"assignment_notifier_bot/internal/infra/logger"
	"assignment_notifier_bot/internal/infra/ollama"
	"assignment_notifier_bot/internal/infra/scheduler"
	"assignment_notifier_bot/internal/infra/smsgateway"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	if cfg.SMTPServer == "" || cfg.EmailSender == "" || cfg.EmailPassword == "" || cfg.SMSEmail == "" {
		log.Fatal("FATAL: SMTP_SERVER, EMAIL_SENDER, EMAIL_PASSWORD and SMS_EMAIL must all be set")
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	canvasClient := canvas.NewClient(cfg.CanvasAPIURL, cfg.CanvasAPIToken, cfg.Timezone, log.WithField("component", "canvas"))
	verifyCtx, verifyCancel := context.WithTimeout(rootCtx, 30*time.Second)
	if err := canvasClient.VerifyConnection(verifyCtx); err != nil {
		verifyCancel()
		log.Fatalf("FATAL: Could not connect to Canvas: %v", err)
	}
	verifyCancel()

	ollamaClient := ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel)
	estimator := app.NewEstimator(ollamaClient, log.WithField("component", "estimator"))

	channel := smsgateway.NewChannel(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailSender, cfg.EmailPassword, log.WithField("component", "smsgateway"))
	digestService := app.NewDigestService(
		canvasClient, estimator, channel, app.NewSessionStore(),
		cfg.Timezone, cfg.DaysAhead,
		log.WithField("component", "digest"),
	)

	digestScheduler := scheduler.NewDigestScheduler(
		rootCtx,
		digestService, cfg.SMSEmail,
		cfg.CheckHour, cfg.CheckMinute, cfg.Timezone,
		log.WithField("component", "scheduler"),
	)
	if err := digestScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start scheduler: %v", err)
	}
	log.Infof("Scheduled daily digest to %s at %02d:%02d (%s)",
		cfg.SMSEmail, cfg.CheckHour, cfg.CheckMinute, cfg.Timezone)

	// Run once immediately on startup, like a first-day smoke check.
	go func() {
		runCtx, runCancel := context.WithTimeout(rootCtx, 10*time.Minute)
		defer runCancel()
		digestService.Run(runCtx, cfg.SMSEmail)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notifier...")
	cancel()
	digestScheduler.Stop()
	log.Info("Notifier shut down gracefully.")
}
