package cache_test

import (
	"testing"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/cache"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKnownWordsCache(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	records := []model.WordKnowledgeRecord{
		model.NewWordKnowledgeRecord("u1", "hablar", "hablar", "es", now),
	}

	Convey("Given a known-words cache", t, func() {
		c, err := cache.NewKnownWords()
		So(err, ShouldBeNil)
		defer c.Close()

		Convey("When the learner has no snapshot", func() {
			_, ok := c.Get("u1", "es")
			So(ok, ShouldBeFalse)
		})

		Convey("When a snapshot is stored", func() {
			c.Put("u1", "es", records, now)
			c.Wait()

			Convey("Then it is returned on the next read", func() {
				snap, ok := c.Get("u1", "es")
				So(ok, ShouldBeTrue)
				So(len(snap.Records), ShouldEqual, 1)
				So(snap.Records[0].Lemma, ShouldEqual, "hablar")
				So(snap.CachedAt, ShouldEqual, now)
			})

			Convey("Then other learners stay cold", func() {
				_, ok := c.Get("u1", "fr")
				So(ok, ShouldBeFalse)
				_, ok = c.Get("u2", "es")
				So(ok, ShouldBeFalse)
			})

			Convey("Then invalidation drops it", func() {
				c.Invalidate("u1", "es")
				c.Wait()

				_, ok := c.Get("u1", "es")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the TTL elapses", func() {
			short, err := cache.NewKnownWords(cache.WithTTL(10 * time.Millisecond))
			So(err, ShouldBeNil)
			defer short.Close()

			short.Put("u1", "es", records, now)
			short.Wait()
			time.Sleep(30 * time.Millisecond)

			Convey("Then the snapshot is gone", func() {
				_, ok := short.Get("u1", "es")
				So(ok, ShouldBeFalse)
			})
		})
	})
}
