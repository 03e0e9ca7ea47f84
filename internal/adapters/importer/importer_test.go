package importer_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/importer"
	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/repository"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// workbook builds an in-memory xlsx with the given rows on Sheet1.
func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	Convey("Given a foundation vocabulary workbook", t, func() {
		store := repository.NewMemStore()
		im := importer.New(store, importer.WithClock(func() time.Time { return testNow }))

		buf := workbook(t, [][]interface{}{
			{"word", "lemma", "tags"},
			{"hablo", "hablar", "verbs, ar-conjugation"},
			{"comemos", "comer", "verbs"},
			{"gato", "", ""},
			{"", "huérfano", ""},
		})

		Convey("When the workbook is imported", func() {
			result, err := im.Import(ctx, "u1", "es", buf)
			So(err, ShouldBeNil)

			Convey("Then valid rows become records and bad rows are counted", func() {
				So(result.Imported, ShouldEqual, 3)
				So(result.Skipped, ShouldEqual, 0)
				So(result.Invalid, ShouldEqual, 1)
			})

			Convey("Then records carry tags and are due immediately", func() {
				rec, err := store.Get(ctx, "u1", "es", "hablar")
				So(err, ShouldBeNil)
				So(rec.Word, ShouldEqual, "hablo")
				So(rec.Status, ShouldEqual, model.StatusNew)
				So(rec.Tags, ShouldResemble, []string{"verbs", "ar-conjugation"})
				So(rec.DueAt(testNow), ShouldBeTrue)
			})

			Convey("Then a missing lemma falls back to the word", func() {
				_, err := store.Get(ctx, "u1", "es", "gato")
				So(err, ShouldBeNil)
			})
		})

		Convey("When the same workbook is imported twice", func() {
			_, err := im.Import(ctx, "u1", "es", workbook(t, [][]interface{}{
				{"hablo", "hablar", ""},
			}))
			So(err, ShouldBeNil)

			result, err := im.Import(ctx, "u1", "es", workbook(t, [][]interface{}{
				{"hablo", "hablar", ""},
			}))
			So(err, ShouldBeNil)

			Convey("Then existing words are skipped, not overwritten", func() {
				So(result.Imported, ShouldEqual, 0)
				So(result.Skipped, ShouldEqual, 1)
			})
		})

		Convey("When the learner is not identified", func() {
			_, err := im.Import(ctx, "", "es", workbook(t, [][]interface{}{
				{"hablo", "hablar", ""},
			}))
			So(err, ShouldEqual, importer.ErrLearnerRequired)
		})
	})
}
