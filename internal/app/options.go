package app

import (
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/cache"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/dedupe"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/srs"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/stage"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGuard sets the deduplication guard.
func WithGuard(g dedupe.Guard) Option {
	return func(en *Engine) {
		if g != nil {
			en.guard = g
		}
	}
}

// WithCache sets the known-words snapshot cache.
func WithCache(c *cache.KnownWords) Option {
	return func(en *Engine) {
		if c != nil {
			en.cache = c
		}
	}
}

// WithScheduler sets the spaced-repetition scheduler.
func WithScheduler(s *srs.Scheduler) Option {
	return func(en *Engine) {
		if s != nil {
			en.scheduler = s
		}
	}
}

// WithClassifier sets the learner stage classifier.
func WithClassifier(c *stage.Classifier) Option {
	return func(en *Engine) {
		if c != nil {
			en.classifier = c
		}
	}
}

// WithRatingPolicy sets the rating policy for one module.
func WithRatingPolicy(module model.ModuleSource, policy RatingPolicy) Option {
	return func(en *Engine) {
		en.policies[module] = policy
	}
}

// WithHistoryLimit bounds the per-record module history.
func WithHistoryLimit(limit int) Option {
	return func(en *Engine) {
		if limit > 0 {
			en.historyLimit = limit
		}
	}
}

// WithMaxDueLimit caps the due-words query size.
func WithMaxDueLimit(limit int) Option {
	return func(en *Engine) {
		if limit > 0 {
			en.maxDueLimit = limit
		}
	}
}

// WithClock sets the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(en *Engine) {
		if now != nil {
			en.now = now
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(en *Engine) {
		if l != nil {
			en.logger = l
		}
	}
}
