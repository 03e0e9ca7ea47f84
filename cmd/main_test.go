package main

import (
	"context"
	"testing"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/cache"
	"github.com/wiaanjvr/fluency-next-sub011/internal/app"
	"github.com/wiaanjvr/fluency-next-sub011/internal/config"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given the memory driver", t, func() {
		cfg := config.New()

		store, closeStore, err := newStore(ctx, cfg)
		So(err, ShouldBeNil)
		defer closeStore()

		Convey("Then the store works without a DSN", func() {
			rec := model.NewWordKnowledgeRecord("u1", "hablar", "hablar", "es", time.Now().UTC())
			_, err := store.Create(ctx, rec)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given the sqlite3 driver with an in-memory DSN", t, func() {
		cfg := config.New()
		cfg.StoreDriver = "sqlite3"
		cfg.StoreDSN = ":memory:"

		store, closeStore, err := newStore(ctx, cfg)
		So(err, ShouldBeNil)
		defer closeStore()

		Convey("Then migration ran and writes succeed", func() {
			rec := model.NewWordKnowledgeRecord("u1", "hablar", "hablar", "es", time.Now().UTC())
			_, err := store.Create(ctx, rec)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given an unknown driver", t, func() {
		cfg := config.New()
		cfg.StoreDriver = "mongodb"

		_, _, err := newStore(ctx, cfg)
		So(err, ShouldNotBeNil)
	})
}

func TestEngineOptionsWiring(t *testing.T) {
	ctx := context.Background()

	Convey("Given the default config wired into an engine", t, func() {
		cfg := config.New()
		store, closeStore, err := newStore(ctx, cfg)
		So(err, ShouldBeNil)
		defer closeStore()

		snapshots, err := cache.NewKnownWords()
		So(err, ShouldBeNil)
		defer snapshots.Close()

		engine, err := app.New(store, engineOptions(cfg, newGuard(cfg), snapshots)...)
		So(err, ShouldBeNil)

		Convey("Then the flashcards slow-response policy applies", func() {
			e := model.NewReviewEvent(model.ModuleFlashcards, "hablar", "hablar", "es", true)
			e.ResponseTimeMs = cfg.SlowResponseMs["flashcards"] + 1

			outcome, err := engine.RecordReview(ctx, "u1", e)
			So(err, ShouldBeNil)
			So(outcome.Rating, ShouldEqual, model.RatingHard)
		})
	})
}
