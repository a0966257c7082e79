package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "github.com/lib/pq"

	"turnero/internal/db"
	apperrors "turnero/internal/errors"
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS store_documents (
	id         TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps the document as one JSONB row. Update holds a row
// lock for the whole read-modify-write, so several server processes can
// share a database.
type PostgresStore struct {
	DB  *sql.DB
	Key string
}

func NewPostgresStore(database *sql.DB, key string) *PostgresStore {
	if key == "" {
		key = "default"
	}
	return &PostgresStore{DB: database, Key: key}
}

// OpenPostgres opens and pings a lib/pq connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, createDocumentsTable); err != nil {
		return apperrors.ErrIO("could not create store table", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*db.Document, error) {
	var body []byte
	err := s.DB.QueryRowContext(ctx, `SELECT body FROM store_documents WHERE id = $1`, s.Key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.seed(ctx, s.DB); err != nil {
			return nil, err
		}
		return s.Load(ctx)
	}
	if err != nil {
		return nil, apperrors.ErrIO("could not read store", err)
	}
	return decodeDocument(body)
}

func (s *PostgresStore) Save(ctx context.Context, doc *db.Document) error {
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO store_documents (id, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`, s.Key, string(body))
	if err != nil {
		return apperrors.ErrIO("could not write store", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, fn func(doc *db.Document) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.ErrIO("could not begin store transaction", err)
	}
	defer tx.Rollback()

	if err := s.seed(ctx, tx); err != nil {
		return err
	}

	var body []byte
	if err := tx.QueryRowContext(ctx, `SELECT body FROM store_documents WHERE id = $1 FOR UPDATE`, s.Key).Scan(&body); err != nil {
		return apperrors.ErrIO("could not read store", err)
	}
	doc, err := decodeDocument(body)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}

	updated, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE store_documents SET body = $2, updated_at = NOW() WHERE id = $1`, s.Key, string(updated)); err != nil {
		return apperrors.ErrIO("could not write store", err)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.ErrIO("could not commit store transaction", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// seed inserts the default document unless the row already exists.
func (s *PostgresStore) seed(ctx context.Context, e execer) error {
	body, err := encodeDocument(NewDocument())
	if err != nil {
		return err
	}
	_, err = e.ExecContext(ctx, `
		INSERT INTO store_documents (id, body) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`, s.Key, string(body))
	if err != nil {
		return apperrors.ErrIO("could not initialize store", err)
	}
	return nil
}

func encodeDocument(doc *db.Document) ([]byte, error) {
	doc.Normalize()
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.ErrIO("could not encode store", err)
	}
	return body, nil
}

func decodeDocument(body []byte) (*db.Document, error) {
	var doc db.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperrors.ErrIO("could not decode store", err)
	}
	doc.Normalize()
	return &doc, nil
}
