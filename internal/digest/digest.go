// Package digest periodically sweeps every learner for due reviews and
// hands the result to a notifier. The notifier is a callback, so the
// delivery channel (push, email, bot message) stays outside the engine.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/repository"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/logger"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/metrics"
)

// Default digest configuration constants.
const (
	defaultInterval = time.Hour
	defaultDueLimit = 20
)

// Source answers the two questions a sweep needs.
type Source interface {
	Learners(ctx context.Context) ([]repository.Learner, error)
	DueWords(ctx context.Context, userID, language string, limit int) ([]model.WordKnowledgeRecord, error)
}

// Notifier receives one learner's due words. Learners with nothing due
// are skipped.
type Notifier interface {
	Notify(ctx context.Context, learner repository.Learner, due []model.WordKnowledgeRecord) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, learner repository.Learner, due []model.WordKnowledgeRecord) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, learner repository.Learner, due []model.WordKnowledgeRecord) error {
	return f(ctx, learner, due)
}

// Digest runs the periodic due-review sweep.
type Digest struct {
	source   Source
	notifier Notifier

	interval time.Duration
	dueLimit int

	scheduler *gocron.Scheduler
	logger    logger.Logger
}

// New creates a digest with configuration options.
func New(source Source, notifier Notifier, opts ...Option) *Digest {
	d := &Digest{
		source:   source,
		notifier: notifier,
		interval: defaultInterval,
		dueLimit: defaultDueLimit,
		logger:   logger.Get().Named("digest"),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start schedules the sweep and returns immediately.
func (d *Digest) Start(ctx context.Context) error {
	if d.scheduler != nil {
		return nil
	}

	d.scheduler = gocron.NewScheduler(time.UTC)
	_, err := d.scheduler.Every(d.interval).Do(func() {
		if err := d.RunOnce(ctx); err != nil {
			d.logger.Error(ctx, "digest sweep failed", logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}

	d.scheduler.StartAsync()
	return nil
}

// Stop halts the schedule. Safe to call without a prior Start.
func (d *Digest) Stop() {
	if d.scheduler != nil {
		d.scheduler.Stop()
	}
}

// RunOnce sweeps every learner a single time. Notifier failures are
// logged per learner so one broken delivery never starves the rest.
func (d *Digest) RunOnce(ctx context.Context) error {
	metrics.RecordDigestRun()

	learners, err := d.source.Learners(ctx)
	if err != nil {
		return fmt.Errorf("list learners: %w", err)
	}

	for _, learner := range learners {
		if err := ctx.Err(); err != nil {
			return err
		}

		due, err := d.source.DueWords(ctx, learner.UserID, learner.Language, d.dueLimit)
		if err != nil {
			d.logger.Warn(ctx, "due query failed",
				logger.String("user_id", learner.UserID),
				logger.String("language", learner.Language),
				logger.Error(err),
			)
			continue
		}
		if len(due) == 0 {
			continue
		}

		if err := d.notifier.Notify(ctx, learner, due); err != nil {
			d.logger.Warn(ctx, "notify failed",
				logger.String("user_id", learner.UserID),
				logger.String("language", learner.Language),
				logger.Error(err),
			)
		}
	}

	return nil
}
