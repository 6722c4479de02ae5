package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SQLiteStore - реализация Client поверх SQLite. Все записи лежат в одной
// таблице objects с ключом (type, id); payload хранится текстом JSON.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore открывает (или создает) базу по dsn и готовит схему.
// Для тестов подойдет ":memory:".
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS objects (
		type TEXT NOT NULL,
		id TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		data TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (type, id)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create objects table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, typ string, data json.RawMessage) (*Record, error) {
	now := time.Now().UTC()
	record := &Record{
		ID:        uuid.NewString(),
		Type:      typ,
		Version:   1,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO objects (type, id, version, data, created_at, updated_at) VALUES (?,?,?,?,?,?)`,
		typ, record.ID, record.Version, string(data),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert %s record: %w", typ, err)
	}
	return record, nil
}

func (s *SQLiteStore) Get(ctx context.Context, typ, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, version, data, created_at, updated_at FROM objects WHERE type = ? AND id = ?`,
		typ, id,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s record %s: %w", typ, id, err)
	}
	return record, nil
}

// Update перезаписывает payload при совпадении версии и инкрементирует её.
// Нулевой результат UPDATE разруливается повторным чтением: либо записи нет,
// либо версия ушла вперед.
func (s *SQLiteStore) Update(
	ctx context.Context, typ, id string, data json.RawMessage, expectedVersion int64,
) (*Record, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE objects SET data = ?, version = version + 1, updated_at = ?
		 WHERE type = ? AND id = ? AND version = ?`,
		string(data), now.Format(time.RFC3339Nano), typ, id, expectedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("update %s record %s: %w", typ, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update %s record %s: %w", typ, id, err)
	}
	if affected == 0 {
		if _, getErr := s.Get(ctx, typ, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrVersionConflict
	}

	return s.Get(ctx, typ, id)
}

func (s *SQLiteStore) ListByType(ctx context.Context, typ string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, version, data, created_at, updated_at FROM objects
		 WHERE type = ? ORDER BY created_at LIMIT ?`,
		typ, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", typ, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan %s record: %w", typ, scanErr)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s records: %w", typ, err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var data, createdAt, updatedAt string

	if err := row.Scan(&record.ID, &record.Type, &record.Version, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record.Data = json.RawMessage(data)

	var parseErr error
	if record.CreatedAt, parseErr = time.Parse(time.RFC3339Nano, createdAt); parseErr != nil {
		return nil, parseErr
	}
	if record.UpdatedAt, parseErr = time.Parse(time.RFC3339Nano, updatedAt); parseErr != nil {
		return nil, parseErr
	}
	return &record, nil
}
