package repository

import (
	"context"

	"github.com/and161185/barkcard/internal/model"
)

// DocumentRepository stores schemaless records grouped by collection.
type DocumentRepository interface {
	// Get returns the record or errs.ErrNotFound.
	Get(ctx context.Context, collection, id string) (model.Document, error)
	// Set creates the record, merging into an existing one when merge is true and replacing it otherwise.
	Set(ctx context.Context, collection, id string, fields model.Fields, merge bool) error
	// Update merges fields into an existing record; a missing record yields errs.ErrNotFound.
	Update(ctx context.Context, collection, id string, fields model.Fields) error
	// Add inserts a record under a generated id.
	Add(ctx context.Context, collection string, fields model.Fields) (string, error)
	// Query returns records matching an equality filter.
	Query(ctx context.Context, q model.Query) ([]model.Document, error)
}
