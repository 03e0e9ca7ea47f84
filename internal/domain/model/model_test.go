package model_test

import (
	"testing"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRating(t *testing.T) {
	Convey("Given the 3-point rating scale", t, func() {
		Convey("When checking validity", func() {
			So(model.RatingForgot.IsValid(), ShouldBeTrue)
			So(model.RatingHard.IsValid(), ShouldBeTrue)
			So(model.RatingEasy.IsValid(), ShouldBeTrue)
			So(model.Rating(3).IsValid(), ShouldBeFalse)
			So(model.Rating(-1).IsValid(), ShouldBeFalse)
		})

		Convey("When converting to and from text", func() {
			So(model.RatingEasy.String(), ShouldEqual, "easy")

			r, err := model.ParseRating("hard")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, model.RatingHard)

			_, err = model.ParseRating("okay")
			So(err, ShouldNotBeNil)

			_, err = model.Rating(9).MarshalText()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestStatus(t *testing.T) {
	Convey("Given the word status enum", t, func() {
		Convey("Then the ordering should follow the knowledge ladder", func() {
			So(model.StatusNew, ShouldBeLessThan, model.StatusLearning)
			So(model.StatusLearning, ShouldBeLessThan, model.StatusKnown)
			So(model.StatusKnown, ShouldBeLessThan, model.StatusMastered)
		})

		Convey("Then text round-trips should work", func() {
			s, err := model.ParseStatus("mastered")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, model.StatusMastered)
			So(s.String(), ShouldEqual, "mastered")

			_, err = model.ParseStatus("fluent")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestReviewEvent(t *testing.T) {
	Convey("Given review events from modules", t, func() {
		Convey("When building an event with NewReviewEvent", func() {
			e := model.NewReviewEvent(model.ModuleFlashcards, "hablo", "hablar", "es", true)

			Convey("Then identity fields should be populated", func() {
				So(e.EventID, ShouldNotBeEmpty)
				So(e.Timestamp.IsZero(), ShouldBeFalse)
				So(e.Validate(), ShouldBeNil)
			})
		})

		Convey("When validating malformed events", func() {
			e := model.NewReviewEvent(model.ModuleCloze, "casa", "casa", "es", true)

			Convey("Then an unknown module should be rejected", func() {
				e.Module = "karaoke"
				So(e.Validate(), ShouldEqual, model.ErrUnknownModule)
			})

			Convey("Then a missing lemma should be rejected", func() {
				e.Lemma = ""
				So(e.Validate(), ShouldEqual, model.ErrMissingIdentity)
			})

			Convey("Then a missing language should be rejected", func() {
				e.Language = ""
				So(e.Validate(), ShouldEqual, model.ErrMissingIdentity)
			})

			Convey("Then an out-of-range explicit rating should be rejected", func() {
				bad := model.Rating(7)
				e.Rating = &bad
				So(e.Validate(), ShouldEqual, model.ErrInvalidRating)
			})
		})
	})
}

func TestWordKnowledgeRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a fresh word knowledge record", t, func() {
		rec := model.NewWordKnowledgeRecord("u1", "hablo", "hablar", "es", now)

		Convey("Then it should carry scheduling defaults", func() {
			So(rec.Status, ShouldEqual, model.StatusNew)
			So(rec.EaseFactor, ShouldEqual, model.DefaultEaseFactor)
			So(rec.IntervalDays, ShouldEqual, 0)
			So(rec.Repetitions, ShouldEqual, 0)
			So(rec.LastReviewed, ShouldBeNil)
			So(rec.DueAt(now), ShouldBeTrue)
			So(rec.CheckInvariants(), ShouldBeNil)
		})

		Convey("When cloning", func() {
			rec.Tags = []string{"present-tense"}
			lr := now
			rec.LastReviewed = &lr
			clone := rec.Clone()
			clone.Tags[0] = "subjunctive"
			*clone.LastReviewed = now.Add(time.Hour)

			Convey("Then mutations of the clone should not leak back", func() {
				So(rec.Tags[0], ShouldEqual, "present-tense")
				So(rec.LastReviewed.Equal(now), ShouldBeTrue)
			})
		})

		Convey("When appending history beyond the bound", func() {
			for i := 0; i < 25; i++ {
				e := model.NewReviewEvent(model.ModuleConversation, "hablo", "hablar", "es", true)
				rec.AppendHistory(e, 20)
			}

			Convey("Then only the most recent entries should remain", func() {
				So(len(rec.ModuleHistory), ShouldEqual, 20)
			})
		})

		Convey("When merging tags", func() {
			rec.AddTags([]string{"present-tense", "ar-verb"})
			rec.AddTags([]string{"ar-verb", ""})

			Convey("Then duplicates and empties should be skipped", func() {
				So(rec.Tags, ShouldResemble, []string{"present-tense", "ar-verb"})
			})
		})

		Convey("When violating invariants", func() {
			Convey("Then an ease factor below the floor should be caught", func() {
				rec.EaseFactor = 1.2
				So(rec.CheckInvariants(), ShouldEqual, model.ErrEaseBelowFloor)
			})

			Convey("Then negative counters should be caught", func() {
				rec.IntervalDays = -1
				So(rec.CheckInvariants(), ShouldEqual, model.ErrNegativeCounter)
			})

			Convey("Then a due time before the last review should be caught", func() {
				lr := now
				rec.LastReviewed = &lr
				rec.NextReviewAt = now.Add(-time.Hour)
				So(rec.CheckInvariants(), ShouldEqual, model.ErrDueBeforeReview)
			})
		})
	})
}
