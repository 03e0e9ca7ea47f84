// Package mastery rolls word-level outcomes up into grammar-concept scores.
package mastery

import (
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
)

// maxEvidenceWeight caps how much a single word can dominate a concept
// score: beyond five repetitions more evidence does not add confidence.
const maxEvidenceWeight = 5

// ConceptMastery is the derived mastery state for one grammar concept.
// It is never written directly; it is recomputed from the constituent
// word records on demand.
type ConceptMastery struct {
	ConceptTag string
	Score      float64 // in [0, 1]
	WordCount  int     // words carrying the tag
}

// statusScore maps a word's status to its contribution to concept mastery.
func statusScore(s model.Status) float64 {
	switch s {
	case model.StatusLearning:
		return 0.33
	case model.StatusKnown:
		return 0.66
	case model.StatusMastered:
		return 1.0
	default:
		return 0
	}
}

// Compute derives the mastery score for conceptTag from the given records.
// Words are weighted by min(repetitions, 5) so words with more evidence
// count more. A tag no word carries scores 0: absence of data is a valid
// state, not a fault.
func Compute(records []model.WordKnowledgeRecord, conceptTag string) ConceptMastery {
	out := ConceptMastery{ConceptTag: conceptTag}

	var weighted, totalWeight float64
	for _, rec := range records {
		if !rec.HasTag(conceptTag) {
			continue
		}
		out.WordCount++

		w := rec.Repetitions
		if w > maxEvidenceWeight {
			w = maxEvidenceWeight
		}
		weighted += float64(w) * statusScore(rec.Status)
		totalWeight += float64(w)
	}

	if totalWeight > 0 {
		out.Score = weighted / totalWeight
	}
	return out
}

// ComputeAll derives mastery for every tag present in the records.
func ComputeAll(records []model.WordKnowledgeRecord) []ConceptMastery {
	seen := make(map[string]struct{})
	var tags []string
	for _, rec := range records {
		for _, tag := range rec.Tags {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}

	out := make([]ConceptMastery, 0, len(tags))
	for _, tag := range tags {
		out = append(out, Compute(records, tag))
	}
	return out
}
