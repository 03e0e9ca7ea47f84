package repository_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/repository"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newRecord(lemma string) model.WordKnowledgeRecord {
	return model.NewWordKnowledgeRecord("u1", lemma, lemma, "es", testNow)
}

func TestMemStoreCRUD(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty in-memory store", t, func() {
		s := repository.NewMemStore()

		Convey("When getting an unknown record", func() {
			_, err := s.Get(ctx, "u1", "es", "hablar")

			Convey("Then it should report not found", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When creating a record", func() {
			created, err := s.Create(ctx, newRecord("hablar"))
			So(err, ShouldBeNil)

			Convey("Then it should start at version 1", func() {
				So(created.Version, ShouldEqual, 1)
			})

			Convey("Then creating the same key again should fail", func() {
				_, err := s.Create(ctx, newRecord("hablar"))
				So(err, ShouldEqual, repository.ErrAlreadyExists)
			})

			Convey("Then it should be readable", func() {
				got, err := s.Get(ctx, "u1", "es", "hablar")
				So(err, ShouldBeNil)
				So(got.Lemma, ShouldEqual, "hablar")
			})
		})

		Convey("When updating with the right version", func() {
			created, err := s.Create(ctx, newRecord("hablar"))
			So(err, ShouldBeNil)

			created.Repetitions = 1
			updated, err := s.Update(ctx, created)

			Convey("Then the version should bump", func() {
				So(err, ShouldBeNil)
				So(updated.Version, ShouldEqual, 2)
				So(updated.Repetitions, ShouldEqual, 1)
			})
		})

		Convey("When updating with a stale version", func() {
			created, err := s.Create(ctx, newRecord("hablar"))
			So(err, ShouldBeNil)

			fresh := created
			fresh.Repetitions = 1
			_, err = s.Update(ctx, fresh)
			So(err, ShouldBeNil)

			stale := created
			stale.Repetitions = 99
			_, err = s.Update(ctx, stale)

			Convey("Then the conflict should surface", func() {
				So(err, ShouldEqual, repository.ErrVersionConflict)
			})
		})

		Convey("When updating a missing record", func() {
			_, err := s.Update(ctx, newRecord("nunca"))

			Convey("Then it should report not found", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When writing a record that violates invariants", func() {
			bad := newRecord("malo")
			bad.EaseFactor = 1.0
			_, err := s.Create(ctx, bad)

			Convey("Then the store should refuse the write", func() {
				So(err, ShouldEqual, model.ErrEaseBelowFloor)
			})
		})
	})
}

func TestMemStoreQueries(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with a mixed set of records", t, func() {
		s := repository.NewMemStore(repository.WithMemShardCount(4))

		seed := func(lemma string, status model.Status, reps int, ease float64, due time.Time) {
			rec := newRecord(lemma)
			rec.Status = status
			rec.Repetitions = reps
			rec.EaseFactor = ease
			rec.NextReviewAt = due
			_, err := s.Create(ctx, rec)
			So(err, ShouldBeNil)
		}

		seed("nuevo", model.StatusNew, 0, 2.5, testNow.Add(-time.Hour))
		seed("dificil", model.StatusLearning, 3, 1.4, testNow.Add(-2*time.Hour))
		seed("facil", model.StatusKnown, 4, 2.8, testNow.Add(-30*time.Minute))
		seed("futuro", model.StatusKnown, 2, 2.5, testNow.Add(24*time.Hour))
		seed("dominado", model.StatusMastered, 6, 2.9, testNow.Add(-10*time.Minute))

		Convey("When querying due words", func() {
			due, err := s.DueWords(ctx, "u1", "es", testNow, 10)
			So(err, ShouldBeNil)

			Convey("Then only due records come back, hardest first", func() {
				So(len(due), ShouldEqual, 4)
				So(due[0].Lemma, ShouldEqual, "nuevo")   // never reviewed
				So(due[1].Lemma, ShouldEqual, "dificil") // lowest ease
			})

			Convey("Then the limit bounds the result", func() {
				top, err := s.DueWords(ctx, "u1", "es", testNow, 2)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 2)
			})

			Convey("Then a non-positive limit is rejected", func() {
				_, err := s.DueWords(ctx, "u1", "es", testNow, 0)
				So(err, ShouldEqual, repository.ErrInvalidLimit)
			})
		})

		Convey("When counting by status", func() {
			known, err := s.CountAtLeast(ctx, "u1", "es", model.StatusKnown)
			So(err, ShouldBeNil)
			all, err := s.CountAtLeast(ctx, "u1", "es", model.StatusNew)
			So(err, ShouldBeNil)

			Convey("Then the counts respect the status ladder", func() {
				So(known, ShouldEqual, 3)
				So(all, ShouldEqual, 5)
			})
		})

		Convey("When listing by user", func() {
			records, err := s.ListByUser(ctx, "u1", "es")
			So(err, ShouldBeNil)
			none, err := s.ListByUser(ctx, "u1", "fr")
			So(err, ShouldBeNil)

			Convey("Then only the requested track is returned", func() {
				So(len(records), ShouldEqual, 5)
				So(len(none), ShouldEqual, 0)
			})
		})

		Convey("When enumerating learners", func() {
			other := model.NewWordKnowledgeRecord("u2", "chat", "chat", "fr", testNow)
			_, err := s.Create(ctx, other)
			So(err, ShouldBeNil)

			learners, err := s.Learners(ctx)
			So(err, ShouldBeNil)

			Convey("Then each (user, language) pair appears once", func() {
				So(len(learners), ShouldEqual, 2)
			})
		})
	})
}

func TestMemStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()

	Convey("Given concurrent writers racing on one record", t, func() {
		s := repository.NewMemStore()
		created, err := s.Create(ctx, newRecord("hablar"))
		So(err, ShouldBeNil)

		const writers = 32
		var conflicts atomic.Int64
		var wg sync.WaitGroup
		wg.Add(writers)

		for i := 0; i < writers; i++ {
			go func() {
				defer wg.Done()
				rec := created
				rec.Repetitions = 1
				if _, err := s.Update(ctx, rec); err != nil {
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one write wins and the rest conflict", func() {
			So(conflicts.Load(), ShouldEqual, writers-1)
			got, err := s.Get(ctx, "u1", "es", "hablar")
			So(err, ShouldBeNil)
			So(got.Version, ShouldEqual, 2)
		})
	})

	Convey("Given concurrent writers on distinct records", t, func() {
		s := repository.NewMemStore()

		const writers = 64
		var failures atomic.Int64
		var wg sync.WaitGroup
		wg.Add(writers)

		for i := 0; i < writers; i++ {
			i := i
			go func() {
				defer wg.Done()
				if _, err := s.Create(ctx, newRecord(fmt.Sprintf("palabra-%d", i))); err != nil {
					failures.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then no writer is blocked or lost", func() {
			So(failures.Load(), ShouldEqual, 0)
			records, err := s.ListByUser(ctx, "u1", "es")
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, writers)
		})
	})
}
