// Package stage classifies a learner into a progress stage and derives the
// vocabulary mixing ratio content generators should target.
package stage

import "fmt"

// Stage is the learner's discrete progress bucket.
type Stage int

const (
	StageBootCamp Stage = iota // too few known words for generated content
	StageDeveloping
	StageProficient
)

var stageNames = map[Stage]string{
	StageBootCamp:   "boot_camp",
	StageDeveloping: "developing",
	StageProficient: "proficient",
}

// String returns the stage name, or "Stage(n)" for invalid values.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Profile is the classification result consumed by content generators.
type Profile struct {
	KnownWordCount int
	Stage          Stage
	// KnownRatio is the share of already-known vocabulary generated content
	// should contain; the remainder is new-word exposure.
	KnownRatio float64
	// Generate is the hard gate: below the boot-camp threshold callers must
	// fall back to static drills, never to generated content.
	Generate bool
}

// Default thresholds and ratios.
const (
	defaultDevelopingAt         = 50
	defaultProficientAt         = 300
	defaultDevelopingKnownRatio = 0.95
	defaultProficientKnownRatio = 0.85
)

// Classifier maps a known-word count to a Profile. It is a pure function
// of its configuration; no storage access happens here.
type Classifier struct {
	developingAt         int
	proficientAt         int
	developingKnownRatio float64
	proficientKnownRatio float64
}

// New creates a classifier with default thresholds.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		developingAt:         defaultDevelopingAt,
		proficientAt:         defaultProficientAt,
		developingKnownRatio: defaultDevelopingKnownRatio,
		proficientKnownRatio: defaultProficientKnownRatio,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Classify derives the stage and mixing ratio from a known-word count.
func (c *Classifier) Classify(knownWordCount int) Profile {
	p := Profile{KnownWordCount: knownWordCount}

	switch {
	case knownWordCount < c.developingAt:
		p.Stage = StageBootCamp
		p.Generate = false
		p.KnownRatio = 0
	case knownWordCount < c.proficientAt:
		p.Stage = StageDeveloping
		p.Generate = true
		p.KnownRatio = c.developingKnownRatio
	default:
		p.Stage = StageProficient
		p.Generate = true
		p.KnownRatio = c.proficientKnownRatio
	}

	return p
}
