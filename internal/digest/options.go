package digest

import (
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/pkg/logger"
)

// Option applies a configuration option to the Digest.
type Option func(*Digest)

// WithInterval sets the sweep interval.
func WithInterval(interval time.Duration) Option {
	return func(d *Digest) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithDueLimit caps the number of due words per learner in one digest.
func WithDueLimit(limit int) Option {
	return func(d *Digest) {
		if limit > 0 {
			d.dueLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the digest.
func WithLogger(l logger.Logger) Option {
	return func(d *Digest) {
		if l != nil {
			d.logger = l
		}
	}
}
