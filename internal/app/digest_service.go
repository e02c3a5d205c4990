package app

import (
	"context"
	"time"

	"assignment_notifier_bot/internal/domain/assignment"
	"assignment_notifier_bot/internal/domain/delivery"
	"assignment_notifier_bot/internal/domain/digest"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DigestService defines the digest pipeline operations. Scheduled runs and
// on-demand bot commands both go through Run.
type DigestService interface {
	// Run executes one full pipeline pass for the destination: fetch,
	// filter, estimate, format, deliver. It always resolves to a Result;
	// errors are folded into it and never propagate to the caller.
	Run(ctx context.Context, destination string) delivery.Result

	// ResolveDetail renders the full view of entry N from the
	// destination's most recent digest.
	ResolveDetail(ctx context.Context, destination string, index int) (string, error)

	// Ask answers a free-form question with the destination's last digest
	// and recent conversation injected as model context.
	Ask(ctx context.Context, destination, question string) (string, error)
}

// DigestServiceImpl implements DigestService against the domain interfaces.
type DigestServiceImpl struct {
	source      assignment.Source
	estimator   *Estimator
	channel     delivery.Channel
	sessions    *SessionStore
	location    *time.Location
	horizonDays int
	logger      *logrus.Entry
}

func NewDigestService(
	source assignment.Source,
	estimator *Estimator,
	channel delivery.Channel,
	sessions *SessionStore,
	location *time.Location,
	horizonDays int,
	logger *logrus.Entry,
) *DigestServiceImpl {
	return &DigestServiceImpl{
		source:      source,
		estimator:   estimator,
		channel:     channel,
		sessions:    sessions,
		location:    location,
		horizonDays: horizonDays,
		logger:      logger,
	}
}

// Run executes the pipeline. Only a fetch failure aborts the whole run;
// estimation failures degrade to absent estimates and a delivery failure
// stops the chunk sequence where it happened.
func (s *DigestServiceImpl) Run(ctx context.Context, destination string) delivery.Result {
	res := delivery.Result{RunID: uuid.NewString()}
	log := s.logger.WithFields(logrus.Fields{"run_id": res.RunID, "destination": destination})

	now := time.Now().In(s.location)

	all, err := s.source.ListUpcoming(ctx)
	if err != nil {
		log.WithError(err).Error("Assignment fetch failed, aborting run")
		res.Status = delivery.StatusAborted
		res.Err = err
		return res
	}

	upcoming := digest.SelectUpcoming(all, now, s.horizonDays)
	log.WithField("count", len(upcoming)).Infof("Found %d assignments due within %d days", len(upcoming), s.horizonDays)

	estimates := s.estimator.EstimateAll(ctx, upcoming)
	entries := digest.BuildEntries(upcoming, estimates)

	// The new digest invalidates this destination's previous index mapping.
	s.sessions.Replace(destination, entries)

	chunks := digest.Format(entries, now, s.horizonDays, s.channel.MaxMessageLength())
	res.Entries = len(entries)
	res.ChunksTotal = len(chunks)

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Run cancelled, not sending remaining chunks")
			res.Status = delivery.StatusPartial
			res.Err = err
			return res
		}
		if err := s.channel.Send(ctx, destination, chunk); err != nil {
			log.WithError(err).WithField("chunks_sent", res.ChunksSent).Error("Chunk delivery failed, stopping run")
			res.Status = delivery.StatusPartial
			res.Err = err
			return res
		}
		res.ChunksSent++
	}

	res.Status = delivery.StatusSuccess
	log.WithField("chunks", res.ChunksSent).Info("Digest delivered")
	return res
}

// ResolveDetail re-fetches entry N with its full fields and asks the model
// for a summary. A failed refetch falls back to the cached entry; a failed
// summary is simply omitted.
func (s *DigestServiceImpl) ResolveDetail(ctx context.Context, destination string, index int) (string, error) {
	entry, err := s.sessions.Resolve(destination, index)
	if err != nil {
		return "", err
	}

	log := s.logger.WithFields(logrus.Fields{"destination": destination, "index": index})

	full, err := s.source.GetAssignment(ctx, entry.Assignment.CourseID, entry.Assignment.ID)
	if err != nil {
		log.WithError(err).Warn("Detail refetch failed, using cached assignment")
		cached := entry.Assignment
		full = &cached
	}

	summary := ""
	if full.Description != "" {
		summary, err = s.estimator.Summarize(ctx, *full)
		if err != nil {
			log.WithError(err).Debug("Summary generation failed, omitting")
			summary = ""
		}
	}

	return digest.FormatDetail(full, summary, time.Now().In(s.location)), nil
}
