package mastery_test

import (
	"testing"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/mastery"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func record(lemma string, status model.Status, repetitions int, tags ...string) model.WordKnowledgeRecord {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rec := model.NewWordKnowledgeRecord("u1", lemma, lemma, "es", now)
	rec.Status = status
	rec.Repetitions = repetitions
	rec.Tags = tags
	return rec
}

func TestCompute(t *testing.T) {
	Convey("Given word records tagged with grammar concepts", t, func() {
		records := []model.WordKnowledgeRecord{
			record("hablara", model.StatusMastered, 5, "subjunctive"),
			record("fuera", model.StatusKnown, 2, "subjunctive"),
			record("casa", model.StatusKnown, 4, "noun"),
		}

		Convey("When computing mastery for a tag", func() {
			m := mastery.Compute(records, "subjunctive")

			Convey("Then the score is the evidence-weighted average", func() {
				// (5*1.0 + 2*0.66) / 7
				So(m.Score, ShouldAlmostEqual, (5*1.0+2*0.66)/7, 0.0001)
				So(m.WordCount, ShouldEqual, 2)
				So(m.ConceptTag, ShouldEqual, "subjunctive")
			})
		})

		Convey("When a word has more than five repetitions", func() {
			records := []model.WordKnowledgeRecord{
				record("a", model.StatusMastered, 50, "dative-case"),
				record("b", model.StatusLearning, 5, "dative-case"),
			}
			m := mastery.Compute(records, "dative-case")

			Convey("Then its weight is capped at five", func() {
				So(m.Score, ShouldAlmostEqual, (5*1.0+5*0.33)/10, 0.0001)
			})
		})

		Convey("When no word carries the tag", func() {
			m := mastery.Compute(records, "aorist")

			Convey("Then the score is exactly zero, not an error", func() {
				So(m.Score, ShouldEqual, 0)
				So(m.WordCount, ShouldEqual, 0)
			})
		})

		Convey("When every tagged word is unreviewed", func() {
			records := []model.WordKnowledgeRecord{
				record("x", model.StatusNew, 0, "subjunctive"),
				record("y", model.StatusNew, 0, "subjunctive"),
			}
			m := mastery.Compute(records, "subjunctive")

			Convey("Then zero evidence means zero mastery", func() {
				So(m.Score, ShouldEqual, 0)
				So(m.WordCount, ShouldEqual, 2)
			})
		})
	})
}

func TestComputeAll(t *testing.T) {
	Convey("Given records spanning several tags", t, func() {
		records := []model.WordKnowledgeRecord{
			record("hablara", model.StatusMastered, 5, "subjunctive", "ar-verb"),
			record("casa", model.StatusKnown, 3, "noun"),
		}

		Convey("When computing all concept scores", func() {
			all := mastery.ComputeAll(records)

			Convey("Then every distinct tag appears exactly once", func() {
				So(len(all), ShouldEqual, 3)
				tags := map[string]float64{}
				for _, m := range all {
					tags[m.ConceptTag] = m.Score
				}
				So(tags, ShouldContainKey, "subjunctive")
				So(tags, ShouldContainKey, "ar-verb")
				So(tags, ShouldContainKey, "noun")
				So(tags["subjunctive"], ShouldAlmostEqual, 1.0, 0.0001)
			})
		})
	})
}
