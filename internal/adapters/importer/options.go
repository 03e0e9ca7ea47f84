package importer

import (
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/pkg/logger"
)

// Option applies a configuration option to the Importer.
type Option func(*Importer)

// WithSheet sets the sheet name to read. Defaults to the first sheet.
func WithSheet(name string) Option {
	return func(im *Importer) {
		if name != "" {
			im.sheet = name
		}
	}
}

// WithClock sets the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// WithLogger sets a custom logger for the importer.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}
