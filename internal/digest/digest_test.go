package digest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/repository"
	"github.com/wiaanjvr/fluency-next-sub011/internal/digest"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// memSource serves learners and due words straight from a MemStore.
type memSource struct {
	store *repository.MemStore
}

func (s *memSource) Learners(ctx context.Context) ([]repository.Learner, error) {
	return s.store.Learners(ctx)
}

func (s *memSource) DueWords(ctx context.Context, userID, language string, limit int) ([]model.WordKnowledgeRecord, error) {
	return s.store.DueWords(ctx, userID, language, testNow, limit)
}

type delivery struct {
	learner repository.Learner
	lemmas  []string
}

func TestDigestRunOnce(t *testing.T) {
	ctx := context.Background()

	Convey("Given learners with and without due words", t, func() {
		store := repository.NewMemStore()
		source := &memSource{store: store}

		seed := func(userID, language, lemma string, due time.Time) {
			rec := model.NewWordKnowledgeRecord(userID, lemma, lemma, language, testNow.Add(-48*time.Hour))
			rec.NextReviewAt = due
			_, err := store.Create(ctx, rec)
			So(err, ShouldBeNil)
		}

		seed("u1", "es", "hablar", testNow.Add(-time.Hour))
		seed("u1", "es", "comer", testNow.Add(-time.Minute))
		seed("u2", "fr", "chat", testNow.Add(24*time.Hour))

		var deliveries []delivery
		notifier := digest.NotifierFunc(func(_ context.Context, learner repository.Learner, due []model.WordKnowledgeRecord) error {
			lemmas := make([]string, 0, len(due))
			for _, rec := range due {
				lemmas = append(lemmas, rec.Lemma)
			}
			deliveries = append(deliveries, delivery{learner: learner, lemmas: lemmas})
			return nil
		})

		Convey("When the sweep runs", func() {
			d := digest.New(source, notifier)
			err := d.RunOnce(ctx)
			So(err, ShouldBeNil)

			Convey("Then only the learner with due words is notified", func() {
				So(len(deliveries), ShouldEqual, 1)
				So(deliveries[0].learner, ShouldResemble, repository.Learner{UserID: "u1", Language: "es"})
				So(len(deliveries[0].lemmas), ShouldEqual, 2)
			})
		})

		Convey("When the due limit is one", func() {
			d := digest.New(source, notifier, digest.WithDueLimit(1))
			err := d.RunOnce(ctx)
			So(err, ShouldBeNil)

			Convey("Then the digest is capped", func() {
				So(len(deliveries), ShouldEqual, 1)
				So(len(deliveries[0].lemmas), ShouldEqual, 1)
			})
		})

		Convey("When the notifier fails", func() {
			failing := digest.NotifierFunc(func(context.Context, repository.Learner, []model.WordKnowledgeRecord) error {
				return errors.New("delivery down")
			})
			d := digest.New(source, failing)

			Convey("Then the sweep itself still succeeds", func() {
				So(d.RunOnce(ctx), ShouldBeNil)
			})
		})

		Convey("When started and stopped", func() {
			d := digest.New(source, notifier, digest.WithInterval(time.Hour))
			So(d.Start(ctx), ShouldBeNil)
			So(d.Start(ctx), ShouldBeNil) // idempotent
			d.Stop()
		})
	})
}
