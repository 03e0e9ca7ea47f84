// Package importer seeds word knowledge records from a vocabulary
// workbook. Foundation decks ship as spreadsheets; every row becomes a
// new record due immediately, existing words are left untouched.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/repository"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/logger"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/metrics"
)

// Expected column layout, after an optional header row.
const (
	colWord = iota
	colLemma
	colTags
)

// Result summarizes one import run.
type Result struct {
	Imported int // rows that created a record
	Skipped  int // rows for words the learner already tracks
	Invalid  int // rows missing a word
}

// Importer loads vocabulary workbooks into the store.
type Importer struct {
	store repository.Store
	sheet string
	now   func() time.Time

	logger logger.Logger
}

// New creates an importer with configuration options.
func New(store repository.Store, opts ...Option) *Importer {
	im := &Importer{
		store:  store,
		now:    time.Now,
		logger: logger.Get().Named("importer"),
	}

	for _, opt := range opts {
		opt(im)
	}

	return im
}

// ImportFile reads the workbook at path and seeds records for the
// learner.
func (im *Importer) ImportFile(ctx context.Context, userID, language, path string) (Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return im.importWorkbook(ctx, userID, language, f)
}

// Import reads a workbook from r and seeds records for the learner.
func (im *Importer) Import(ctx context.Context, userID, language string, r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return im.importWorkbook(ctx, userID, language, f)
}

func (im *Importer) importWorkbook(ctx context.Context, userID, language string, f *excelize.File) (Result, error) {
	if userID == "" || language == "" {
		return Result{}, ErrLearnerRequired
	}

	sheet := im.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Result{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var result Result
	now := im.now().UTC()

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if i == 0 && isHeader(row) {
			continue
		}

		word := cell(row, colWord)
		if word == "" {
			result.Invalid++
			continue
		}

		lemma := cell(row, colLemma)
		if lemma == "" {
			lemma = word
		}

		rec := model.NewWordKnowledgeRecord(userID, word, lemma, language, now)
		rec.AddTags(splitTags(cell(row, colTags)))

		if _, err := im.store.Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("seed word %q: %w", lemma, err)
		}
		result.Imported++
	}

	metrics.RecordImportedRows(result.Imported)
	im.logger.Info(ctx, "vocabulary imported",
		logger.String("user_id", userID),
		logger.String("language", language),
		logger.Int("imported", result.Imported),
		logger.Int("skipped", result.Skipped),
		logger.Int("invalid", result.Invalid),
	)
	return result, nil
}

// isHeader detects a label row so exported decks can keep their titles.
func isHeader(row []string) bool {
	return strings.EqualFold(cell(row, colWord), "word")
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
