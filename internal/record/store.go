package record

import (
	"context"
	"database/sql"
	"encoding/json"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrNotFound indicates the requested record or media row does not exist.
var ErrNotFound = errors.New("not found")

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrInvalidStatus indicates a status value outside the draft/review/published set.
var ErrInvalidStatus = errors.New("invalid status")

// Store manages record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the record database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// CreateRecord inserts a new draft record.
func (s *Store) CreateRecord(ctx context.Context, title, description string) (*Record, error) {
	now := time.Now().UTC()
	rec := &Record{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Status:      StatusDraft,
		LOM:         map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, title, description, status, lom, created_at, updated_at)
         VALUES (?, ?, ?, ?, '{}', ?, ?)`,
		rec.ID, rec.Title, rec.Description, rec.Status,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

// GetRecord loads one record, including its LOM metadata tree.
func (s *Store) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, lom, created_at, updated_at
         FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

// ListRecords returns all records ordered by creation time, newest first.
// LOM trees are included.
func (s *Store) ListRecords(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, lom, created_at, updated_at
         FROM records ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateRecord updates title, description, and status. Empty fields are left
// unchanged.
func (s *Store) UpdateRecord(ctx context.Context, id, title, description, status string) (*Record, error) {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		rec.Title = title
	}
	if description != "" {
		rec.Description = description
	}
	if status != "" {
		if !ValidStatus(status) {
			return nil, fmt.Errorf("%w %q", ErrInvalidStatus, status)
		}
		rec.Status = status
	}
	rec.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`UPDATE records SET title = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		rec.Title, rec.Description, rec.Status, rec.UpdatedAt.Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

// DeleteRecord removes a record and returns the media rows that were attached
// to it so the caller can remove the files on disk.
func (s *Store) DeleteRecord(ctx context.Context, id string) ([]*Media, error) {
	media, err := s.ListMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return media, nil
}

// SetLOM replaces the record's LOM metadata tree.
func (s *Store) SetLOM(ctx context.Context, id string, tree map[string]any) error {
	if tree == nil {
		tree = map[string]any{}
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("serialize lom: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET lom = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("update lom: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertMedia stores a media row. The file itself must already be on disk.
func (s *Store) InsertMedia(ctx context.Context, m *Media) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO media (id, record_id, file_type, filename, caption, alt_text, path, size, page_count, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.RecordID, m.FileType, m.Filename, m.Caption, m.AltText,
		m.Path, m.Size, m.PageCount, m.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

// ListMedia returns a record's media rows in upload order.
func (s *Store) ListMedia(ctx context.Context, recordID string) ([]*Media, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, record_id, file_type, filename, caption, alt_text, path, size, page_count, created_at
         FROM media WHERE record_id = ? ORDER BY created_at ASC, id ASC`, recordID)
	if err != nil {
		return nil, fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()

	var media []*Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// GetMedia loads one media row.
func (s *Store) GetMedia(ctx context.Context, id string) (*Media, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, record_id, file_type, filename, caption, alt_text, path, size, page_count, created_at
         FROM media WHERE id = ?`, id)
	return scanMedia(row)
}

// DeleteMedia removes a media row and returns it so the caller can remove
// the file.
func (s *Store) DeleteMedia(ctx context.Context, id string) (*Media, error) {
	m, err := s.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete media: %w", err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var lomRaw, createdAt, updatedAt string
	err := row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Status, &lomRaw, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	if err := json.Unmarshal([]byte(lomRaw), &rec.LOM); err != nil {
		return nil, fmt.Errorf("parse lom for record %s: %w", rec.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &rec, nil
}

func scanMedia(row rowScanner) (*Media, error) {
	var m Media
	var createdAt string
	err := row.Scan(&m.ID, &m.RecordID, &m.FileType, &m.Filename, &m.Caption,
		&m.AltText, &m.Path, &m.Size, &m.PageCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan media: %w", err)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &m, nil
}
