package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
)

// schema is portable between postgres and sqlite: sqlite accepts the
// postgres type names, and JSON columns are plain text in both.
const schema = `
CREATE TABLE IF NOT EXISTS word_knowledge (
	user_id        TEXT NOT NULL,
	language       TEXT NOT NULL,
	lemma          TEXT NOT NULL,
	word           TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	ease_factor    DOUBLE PRECISION NOT NULL,
	interval_days  INTEGER NOT NULL,
	repetitions    INTEGER NOT NULL,
	next_review_at TIMESTAMP NOT NULL,
	last_reviewed  TIMESTAMP,
	tags           TEXT NOT NULL DEFAULT '[]',
	module_history TEXT NOT NULL DEFAULT '[]',
	version        BIGINT NOT NULL,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, language, lemma)
)`

const dueIndex = `
CREATE INDEX IF NOT EXISTS idx_word_knowledge_due
ON word_knowledge (user_id, language, next_review_at)`

// SQLStore implements Store on a relational database through sqlx.
// Optimistic locking rides on the version column: every UPDATE carries
// "AND version = ?" so a lost update surfaces as zero affected rows.
type SQLStore struct {
	db *sqlx.DB
}

// Open connects to the database and prepares the connection pool.
// driver is "postgres" or "sqlite3".
func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		// sqlite does not support concurrent writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return db, nil
}

// NewSQLStore wraps an open connection.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the table and indexes if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create word_knowledge table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, dueIndex); err != nil {
		return fmt.Errorf("create due index: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// wordRow is the database projection of a WordKnowledgeRecord.
type wordRow struct {
	UserID        string       `db:"user_id"`
	Language      string       `db:"language"`
	Lemma         string       `db:"lemma"`
	Word          string       `db:"word"`
	Status        string       `db:"status"`
	EaseFactor    float64      `db:"ease_factor"`
	IntervalDays  int          `db:"interval_days"`
	Repetitions   int          `db:"repetitions"`
	NextReviewAt  time.Time    `db:"next_review_at"`
	LastReviewed  sql.NullTime `db:"last_reviewed"`
	Tags          string       `db:"tags"`
	ModuleHistory string       `db:"module_history"`
	Version       int64        `db:"version"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

func toRow(rec model.WordKnowledgeRecord) (wordRow, error) {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return wordRow{}, fmt.Errorf("marshal tags: %w", err)
	}
	history, err := json.Marshal(rec.ModuleHistory)
	if err != nil {
		return wordRow{}, fmt.Errorf("marshal history: %w", err)
	}

	row := wordRow{
		UserID:        rec.UserID,
		Language:      rec.Language,
		Lemma:         rec.Lemma,
		Word:          rec.Word,
		Status:        rec.Status.String(),
		EaseFactor:    rec.EaseFactor,
		IntervalDays:  rec.IntervalDays,
		Repetitions:   rec.Repetitions,
		NextReviewAt:  rec.NextReviewAt.UTC(),
		Tags:          string(tags),
		ModuleHistory: string(history),
		Version:       rec.Version,
		CreatedAt:     rec.CreatedAt.UTC(),
		UpdatedAt:     rec.UpdatedAt.UTC(),
	}
	if rec.LastReviewed != nil {
		row.LastReviewed = sql.NullTime{Time: rec.LastReviewed.UTC(), Valid: true}
	}
	return row, nil
}

func fromRow(row wordRow) (model.WordKnowledgeRecord, error) {
	status, err := model.ParseStatus(row.Status)
	if err != nil {
		return model.WordKnowledgeRecord{}, err
	}

	rec := model.WordKnowledgeRecord{
		UserID:       row.UserID,
		Language:     row.Language,
		Lemma:        row.Lemma,
		Word:         row.Word,
		Status:       status,
		EaseFactor:   row.EaseFactor,
		IntervalDays: row.IntervalDays,
		Repetitions:  row.Repetitions,
		NextReviewAt: row.NextReviewAt,
		Version:      row.Version,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.LastReviewed.Valid {
		t := row.LastReviewed.Time
		rec.LastReviewed = &t
	}
	if err := json.Unmarshal([]byte(row.Tags), &rec.Tags); err != nil {
		return model.WordKnowledgeRecord{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ModuleHistory), &rec.ModuleHistory); err != nil {
		return model.WordKnowledgeRecord{}, fmt.Errorf("unmarshal history: %w", err)
	}
	return rec, nil
}

// Get returns the record for the natural key.
func (s *SQLStore) Get(ctx context.Context, userID, language, lemma string) (model.WordKnowledgeRecord, error) {
	var row wordRow
	query := s.db.Rebind(`SELECT * FROM word_knowledge WHERE user_id = ? AND language = ? AND lemma = ?`)
	err := s.db.GetContext(ctx, &row, query, userID, language, lemma)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WordKnowledgeRecord{}, ErrNotFound
	}
	if err != nil {
		return model.WordKnowledgeRecord{}, fmt.Errorf("get word record: %w", err)
	}
	return fromRow(row)
}

// Create inserts a new record at version 1.
func (s *SQLStore) Create(ctx context.Context, rec model.WordKnowledgeRecord) (model.WordKnowledgeRecord, error) {
	if err := rec.CheckInvariants(); err != nil {
		return model.WordKnowledgeRecord{}, err
	}

	rec.Version = 1
	row, err := toRow(rec)
	if err != nil {
		return model.WordKnowledgeRecord{}, err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO word_knowledge (
			user_id, language, lemma, word, status, ease_factor,
			interval_days, repetitions, next_review_at, last_reviewed,
			tags, module_history, version, created_at, updated_at
		) VALUES (
			:user_id, :language, :lemma, :word, :status, :ease_factor,
			:interval_days, :repetitions, :next_review_at, :last_reviewed,
			:tags, :module_history, :version, :created_at, :updated_at
		)`, row)
	if err != nil {
		if _, getErr := s.Get(ctx, rec.UserID, rec.Language, rec.Lemma); getErr == nil {
			return model.WordKnowledgeRecord{}, ErrAlreadyExists
		}
		return model.WordKnowledgeRecord{}, fmt.Errorf("insert word record: %w", err)
	}
	return rec, nil
}

// Update applies rec if the stored version still equals rec.Version.
func (s *SQLStore) Update(ctx context.Context, rec model.WordKnowledgeRecord) (model.WordKnowledgeRecord, error) {
	if err := rec.CheckInvariants(); err != nil {
		return model.WordKnowledgeRecord{}, err
	}

	next := rec
	next.Version = rec.Version + 1
	row, err := toRow(next)
	if err != nil {
		return model.WordKnowledgeRecord{}, err
	}

	query := s.db.Rebind(`
		UPDATE word_knowledge SET
			word = ?, status = ?, ease_factor = ?, interval_days = ?,
			repetitions = ?, next_review_at = ?, last_reviewed = ?,
			tags = ?, module_history = ?, version = ?, updated_at = ?
		WHERE user_id = ? AND language = ? AND lemma = ? AND version = ?`)
	res, err := s.db.ExecContext(ctx, query,
		row.Word, row.Status, row.EaseFactor, row.IntervalDays,
		row.Repetitions, row.NextReviewAt, row.LastReviewed,
		row.Tags, row.ModuleHistory, row.Version, row.UpdatedAt,
		rec.UserID, rec.Language, rec.Lemma, rec.Version,
	)
	if err != nil {
		return model.WordKnowledgeRecord{}, fmt.Errorf("update word record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return model.WordKnowledgeRecord{}, fmt.Errorf("update word record: %w", err)
	}
	if affected == 0 {
		// Disambiguate a stale version from a missing row.
		if _, getErr := s.Get(ctx, rec.UserID, rec.Language, rec.Lemma); errors.Is(getErr, ErrNotFound) {
			return model.WordKnowledgeRecord{}, ErrNotFound
		}
		return model.WordKnowledgeRecord{}, ErrVersionConflict
	}
	return next, nil
}

// ListByUser returns every record for one learning track.
func (s *SQLStore) ListByUser(ctx context.Context, userID, language string) ([]model.WordKnowledgeRecord, error) {
	var rows []wordRow
	query := s.db.Rebind(`SELECT * FROM word_knowledge WHERE user_id = ? AND language = ?`)
	if err := s.db.SelectContext(ctx, &rows, query, userID, language); err != nil {
		return nil, fmt.Errorf("list word records: %w", err)
	}

	out := make([]model.WordKnowledgeRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DueWords returns up to limit due records, hardest first.
func (s *SQLStore) DueWords(ctx context.Context, userID, language string, now time.Time, limit int) ([]model.WordKnowledgeRecord, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	var rows []wordRow
	query := s.db.Rebind(`
		SELECT * FROM word_knowledge
		WHERE user_id = ? AND language = ? AND next_review_at <= ?
		ORDER BY (repetitions = 0) DESC, ease_factor ASC, next_review_at ASC
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &rows, query, userID, language, now.UTC(), limit); err != nil {
		return nil, fmt.Errorf("query due words: %w", err)
	}

	out := make([]model.WordKnowledgeRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// CountAtLeast counts records with status at or above min.
func (s *SQLStore) CountAtLeast(ctx context.Context, userID, language string, min model.Status) (int, error) {
	var statuses []string
	for st := min; st <= model.StatusMastered; st++ {
		statuses = append(statuses, st.String())
	}

	query, args, err := sqlx.In(`
		SELECT COUNT(*) FROM word_knowledge
		WHERE user_id = ? AND language = ? AND status IN (?)`,
		userID, language, statuses)
	if err != nil {
		return 0, fmt.Errorf("build status count query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count word records: %w", err)
	}
	return count, nil
}

// Learners enumerates every tracked (user, language) pair.
func (s *SQLStore) Learners(ctx context.Context) ([]Learner, error) {
	var rows []struct {
		UserID   string `db:"user_id"`
		Language string `db:"language"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT DISTINCT user_id, language FROM word_knowledge`); err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}

	out := make([]Learner, 0, len(rows))
	for _, row := range rows {
		out = append(out, Learner{UserID: row.UserID, Language: row.Language})
	}
	return out, nil
}
