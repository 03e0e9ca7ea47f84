// Package stage classifies a learner into a progress stage.
package stage

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithDevelopingAt sets the known-word count that opens the generation gate.
func WithDevelopingAt(count int) Option {
	return func(c *Classifier) {
		if count > 0 {
			c.developingAt = count
		}
	}
}

// WithProficientAt sets the known-word count for the proficient stage.
func WithProficientAt(count int) Option {
	return func(c *Classifier) {
		if count > 0 {
			c.proficientAt = count
		}
	}
}

// WithDevelopingKnownRatio sets the known-vocabulary share targeted while
// developing.
func WithDevelopingKnownRatio(ratio float64) Option {
	return func(c *Classifier) {
		if ratio > 0 && ratio <= 1 {
			c.developingKnownRatio = ratio
		}
	}
}

// WithProficientKnownRatio sets the known-vocabulary share targeted once
// proficient.
func WithProficientKnownRatio(ratio float64) Option {
	return func(c *Classifier) {
		if ratio > 0 && ratio <= 1 {
			c.proficientKnownRatio = ratio
		}
	}
}
