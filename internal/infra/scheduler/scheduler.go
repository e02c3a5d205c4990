package scheduler

import (
	"context"
	"fmt"
	"time"

	"assignment_notifier_bot/internal/app"
	"assignment_notifier_bot/internal/domain/delivery"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Budget for one scheduled run, including all model calls.
const runTimeout = 10 * time.Minute

// DigestScheduler triggers the daily digest at the configured local time.
// It is a thin adapter: the cron callback derives a context from the
// process context and calls the same DigestService.Run the on-demand
// path uses, so shutdown cancellation reaches a running job.
type DigestScheduler struct {
	baseCtx     context.Context
	cronEngine  *cron.Cron
	service     app.DigestService
	destination string
	cronSpec    string
	logger      *logrus.Entry
}

func NewDigestScheduler(
	ctx context.Context,
	service app.DigestService,
	destination string,
	hour, minute int,
	location *time.Location,
	logger *logrus.Entry,
) *DigestScheduler {
	return &DigestScheduler{
		baseCtx:     ctx,
		cronEngine:  cron.New(cron.WithLocation(location)),
		service:     service,
		destination: destination,
		cronSpec:    fmt.Sprintf("%d %d * * *", minute, hour),
		logger:      logger,
	}
}

func (s *DigestScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, s.runOnce)
	if err != nil {
		return fmt.Errorf("could not add daily digest cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Digest scheduler started")
	return nil
}

func (s *DigestScheduler) runOnce() {
	s.logger.Info("Cron job triggered for daily digest")

	ctx, cancel := context.WithTimeout(s.baseCtx, runTimeout)
	defer cancel()

	res := s.service.Run(ctx, s.destination)
	switch res.Status {
	case delivery.StatusSuccess:
		s.logger.WithField("run_id", res.RunID).
			Infof("Scheduled digest delivered: %d entries, %d chunks", res.Entries, res.ChunksSent)
	case delivery.StatusPartial:
		s.logger.WithField("run_id", res.RunID).WithError(res.Err).
			Warnf("Scheduled digest partially delivered: %d/%d chunks", res.ChunksSent, res.ChunksTotal)
	case delivery.StatusAborted:
		s.logger.WithField("run_id", res.RunID).WithError(res.Err).
			Error("Scheduled digest aborted")
	}
}

func (s *DigestScheduler) Stop() {
	s.logger.Info("Stopping digest scheduler...")
	ctx := s.cronEngine.Stop() // Waits for a running job to finish.
	<-ctx.Done()
	s.logger.Info("Digest scheduler gracefully stopped")
}
