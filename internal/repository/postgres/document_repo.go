package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// DocumentRepo stores records as jsonb rows keyed by (collection, id).
type DocumentRepo struct{ db *DB }

// NewDocumentRepo constructs a document repository.
func NewDocumentRepo(db *DB) *DocumentRepo { return &DocumentRepo{db: db} }

// Get selects one record.
func (r *DocumentRepo) Get(ctx context.Context, collection, id string) (model.Document, error) {
	const q = `SELECT data, updated_at FROM documents WHERE collection=$1 AND id=$2`
	var (
		raw []byte
		upd time.Time
	)
	if err := r.db.Pool.QueryRow(ctx, q, collection, id).Scan(&raw, &upd); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, errs.ErrNotFound
		}
		return model.Document{}, err
	}
	return decodeDocument(collection, id, raw, upd)
}

// Set writes a record, creating it if absent.
func (r *DocumentRepo) Set(ctx context.Context, collection, id string, fields model.Fields, merge bool) error {
	const replace = `
INSERT INTO documents (collection, id, data)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	const merged = `
INSERT INTO documents (collection, id, data)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = now()`
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	q := replace
	if merge {
		q = merged
	}
	_, err = r.db.Pool.Exec(ctx, q, collection, id, raw)
	return err
}

// Update merges fields into an existing record.
func (r *DocumentRepo) Update(ctx context.Context, collection, id string, fields model.Fields) error {
	const q = `UPDATE documents SET data = data || $3::jsonb, updated_at = now() WHERE collection=$1 AND id=$2`
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, q, collection, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Add inserts a record under a fresh UUID.
func (r *DocumentRepo) Add(ctx context.Context, collection string, fields model.Fields) (string, error) {
	const q = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`
	raw, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	id := uuid.Must(uuid.NewV4()).String()
	if _, err := r.db.Pool.Exec(ctx, q, collection, id, raw); err != nil {
		if isUniqueViolation(err) {
			return "", errs.ErrAlreadyExists
		}
		return "", err
	}
	return id, nil
}

// Query returns the records of a collection whose field equals the value.
func (r *DocumentRepo) Query(ctx context.Context, qr model.Query) ([]model.Document, error) {
	const asc = `
SELECT id, data, updated_at FROM documents
WHERE collection=$1 AND data->>$2 = $3
ORDER BY data->>$4 ASC, id`
	const desc = `
SELECT id, data, updated_at FROM documents
WHERE collection=$1 AND data->>$2 = $3
ORDER BY data->>$4 DESC, id`
	q := asc
	if qr.Descending {
		q = desc
	}
	rows, err := r.db.Pool.Query(ctx, q, qr.Collection, qr.Field, qr.Value, qr.OrderBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
			upd time.Time
		)
		if err := rows.Scan(&id, &raw, &upd); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(qr.Collection, id, raw, upd)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func encodeFields(f model.Fields) ([]byte, error) {
	if f == nil {
		f = model.Fields{}
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return raw, nil
}

func decodeDocument(collection, id string, raw []byte, upd time.Time) (model.Document, error) {
	f := model.Fields{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f); err != nil {
			return model.Document{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
	}
	return model.Document{Collection: collection, ID: id, Exists: true, Fields: f, UpdatedAt: upd}, nil
}
