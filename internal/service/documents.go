package service

import (
	"context"
	"errors"

	"github.com/and161185/barkcard/internal/changefeed"
	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
	"github.com/and161185/barkcard/internal/repository"
	"go.uber.org/zap"
)

// DocumentService is the caller-scoped record API.
type DocumentService interface {
	Get(ctx context.Context, caller, collection, id string) (model.Document, error)
	Update(ctx context.Context, caller, collection, id string, fields model.Fields) error
	Set(ctx context.Context, caller, collection, id string, fields model.Fields, merge bool) error
	Add(ctx context.Context, caller, collection string, fields model.Fields) (string, error)
	Query(ctx context.Context, caller string, q model.Query) ([]model.Document, error)
	Watch(ctx context.Context, caller, collection, id string, send func(model.Document) error) error
	WatchQuery(ctx context.Context, caller string, q model.Query, send func([]model.Document) error) error
}

// Documents enforces access rules over a DocumentRepository and serves live snapshots from a change hub.
type Documents struct {
	repo repository.DocumentRepository
	hub  *changefeed.Hub
	log  *zap.Logger
}

// NewDocuments constructs the document service.
func NewDocuments(repo repository.DocumentRepository, hub *changefeed.Hub, log *zap.Logger) *Documents {
	if log == nil {
		log = zap.NewNop()
	}
	return &Documents{repo: repo, hub: hub, log: log}
}

// Get returns the record; a missing record is a snapshot with Exists=false.
func (s *Documents) Get(ctx context.Context, caller, collection, id string) (model.Document, error) {
	if err := canRead(caller, collection, id); err != nil {
		return model.Document{}, err
	}
	return s.read(ctx, collection, id)
}

func (s *Documents) read(ctx context.Context, collection, id string) (model.Document, error) {
	doc, err := s.repo.Get(ctx, collection, id)
	if errors.Is(err, errs.ErrNotFound) {
		return model.Document{Collection: collection, ID: id}, nil
	}
	return doc, err
}

// Update merges fields into an existing record.
func (s *Documents) Update(ctx context.Context, caller, collection, id string, fields model.Fields) error {
	if err := canWriteProfile(caller, collection, id, fields); err != nil {
		return err
	}
	return s.repo.Update(ctx, collection, id, fields)
}

// Set creates or merges the record. Profile records only accept merges,
// so a write can never drop server-owned fields.
func (s *Documents) Set(ctx context.Context, caller, collection, id string, fields model.Fields, merge bool) error {
	if err := canWriteProfile(caller, collection, id, fields); err != nil {
		return err
	}
	if !merge {
		return denied("replace %s/%s", collection, id)
	}
	return s.repo.Set(ctx, collection, id, fields, true)
}

// Add inserts a record under a generated id.
func (s *Documents) Add(ctx context.Context, caller, collection string, fields model.Fields) (string, error) {
	if err := canAdd(caller, collection, fields); err != nil {
		return "", err
	}
	return s.repo.Add(ctx, collection, fields)
}

// Query lists records matching q.
func (s *Documents) Query(ctx context.Context, caller string, q model.Query) ([]model.Document, error) {
	if err := s.canQuery(ctx, caller, q); err != nil {
		return nil, err
	}
	return s.repo.Query(ctx, q)
}

// Watch sends the current snapshot, then a new one whenever the record changes,
// until ctx ends or send fails.
func (s *Documents) Watch(ctx context.Context, caller, collection, id string, send func(model.Document) error) error {
	if err := canRead(caller, collection, id); err != nil {
		return err
	}
	changed, stop := s.hub.Watch(collection, id)
	defer stop()

	last, err := s.read(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := send(last); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changed:
			if !ok {
				return nil
			}
		}
		doc, err := s.read(ctx, collection, id)
		if err != nil {
			return err
		}
		if sameSnapshot(last, doc) {
			continue
		}
		last = doc
		if err := send(doc); err != nil {
			return err
		}
	}
}

// WatchQuery sends the matching records, then the full result again after
// every change in the collection.
func (s *Documents) WatchQuery(ctx context.Context, caller string, q model.Query, send func([]model.Document) error) error {
	if err := s.canQuery(ctx, caller, q); err != nil {
		return err
	}
	changed, stop := s.hub.Watch(q.Collection, "")
	defer stop()

	for {
		docs, err := s.repo.Query(ctx, q)
		if err != nil {
			return err
		}
		if err := send(docs); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changed:
			if !ok {
				return nil
			}
		}
		s.log.Debug("query changed", zap.String("collection", q.Collection))
	}
}

func sameSnapshot(a, b model.Document) bool {
	if a.Exists != b.Exists {
		return false
	}
	if !a.Exists {
		return true
	}
	return a.UpdatedAt.Equal(b.UpdatedAt)
}
