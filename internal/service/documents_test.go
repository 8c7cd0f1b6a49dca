package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/and161185/barkcard/internal/changefeed"
	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
	"github.com/and161185/barkcard/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newDocs(t *testing.T) (*Documents, *memory.DocumentRepo) {
	t.Helper()
	hub := changefeed.New()
	repo := memory.NewDocumentRepo(hub.Publish)
	return NewDocuments(repo, hub, zaptest.NewLogger(t)), repo
}

func TestDocuments_ProfileRules(t *testing.T) {
	t.Parallel()
	s, repo := newDocs(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, model.CollectionUsers, "u1", model.Fields{model.FieldBalance: 100.0}, false))

	doc, err := s.Get(ctx, "u1", model.CollectionUsers, "u1")
	require.NoError(t, err)
	require.True(t, doc.Exists)

	_, err = s.Get(ctx, "u2", model.CollectionUsers, "u1")
	require.ErrorIs(t, err, errs.ErrPermissionDenied)

	missing, err := s.Get(ctx, "u9", model.CollectionUsers, "u9")
	require.NoError(t, err)
	require.False(t, missing.Exists)

	require.NoError(t, s.Set(ctx, "u1", model.CollectionUsers, "u1", model.Fields{model.FieldFirstName: "Ana"}, true))
	require.ErrorIs(t, s.Set(ctx, "u1", model.CollectionUsers, "u1", model.Fields{model.FieldFirstName: "Ana"}, false), errs.ErrPermissionDenied)
	require.ErrorIs(t, s.Update(ctx, "u1", model.CollectionUsers, "u1", model.Fields{model.FieldBalance: 1e6}), errs.ErrPermissionDenied)
	require.ErrorIs(t, s.Update(ctx, "u1", model.CollectionUsers, "u1", model.Fields{model.FieldStatus: "active"}), errs.ErrPermissionDenied)
	require.ErrorIs(t, s.Update(ctx, "u2", model.CollectionUsers, "u1", model.Fields{model.FieldFirstName: "Eve"}), errs.ErrPermissionDenied)
	require.ErrorIs(t, s.Update(ctx, "u1", "", "u1", nil), errs.ErrValidation)

	require.NoError(t, s.Update(ctx, "u1", model.CollectionUsers, "u1", model.Fields{model.FieldStatus: "deactivated"}))
	doc, err = s.Get(ctx, "u1", model.CollectionUsers, "u1")
	require.NoError(t, err)
	rec := model.ProfileRecordFromFields("u1", doc.Fields)
	require.True(t, rec.Deactivated())
	require.Equal(t, 100.0, rec.Balance)
	require.Equal(t, "Ana", rec.FirstName)
}

func TestDocuments_SupportAndTransactionRules(t *testing.T) {
	t.Parallel()
	s, repo := newDocs(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, model.CollectionUsers, "u1", model.Fields{model.FieldStudentID: "2021-000123"}, false))
	_, err := repo.Add(ctx, model.CollectionTransactions, model.Fields{model.FieldTxStudentID: "2021-000123", model.FieldTxTotal: 50.0})
	require.NoError(t, err)
	_, err = repo.Add(ctx, model.CollectionTransactions, model.Fields{model.FieldTxStudentID: "2021-999999", model.FieldTxTotal: 70.0})
	require.NoError(t, err)

	id, err := s.Add(ctx, "u1", model.CollectionSupportRequest, model.Fields{model.FieldSupportUserID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	_, err = s.Add(ctx, "u1", model.CollectionSupportRequest, model.Fields{model.FieldSupportUserID: "u2"})
	require.ErrorIs(t, err, errs.ErrPermissionDenied)
	_, err = s.Add(ctx, "u1", model.CollectionTransactions, model.Fields{})
	require.ErrorIs(t, err, errs.ErrPermissionDenied)

	own := model.Query{Collection: model.CollectionTransactions, Field: model.FieldTxStudentID, Value: "2021-000123", OrderBy: model.FieldTxTimestamp, Descending: true}
	docs, err := s.Query(ctx, "u1", own)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	other := own
	other.Value = "2021-999999"
	_, err = s.Query(ctx, "u1", other)
	require.ErrorIs(t, err, errs.ErrPermissionDenied)

	_, err = s.Query(ctx, "nobody", own)
	require.ErrorIs(t, err, errs.ErrPermissionDenied)

	_, err = s.Query(ctx, "u1", model.Query{Collection: model.CollectionUsers, Field: model.FieldStudentID, Value: "2021-000123"})
	require.ErrorIs(t, err, errs.ErrPermissionDenied)
}

func TestDocuments_WatchSendsInitialThenChanges(t *testing.T) {
	t.Parallel()
	s, repo := newDocs(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan model.Document, 8)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, "u1", model.CollectionUsers, "u1", func(d model.Document) error {
			got <- d
			return nil
		})
	}()

	first := <-got
	require.False(t, first.Exists)

	require.NoError(t, repo.Set(context.Background(), model.CollectionUsers, "u1", model.Fields{model.FieldFirstName: "Ana"}, false))
	select {
	case d := <-got:
		require.True(t, d.Exists)
		require.Equal(t, "Ana", d.Fields.String(model.FieldFirstName))
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after write")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestDocuments_WatchStopsOnSendError(t *testing.T) {
	t.Parallel()
	s, _ := newDocs(t)
	boom := errors.New("client gone")
	err := s.Watch(context.Background(), "u1", model.CollectionUsers, "u1", func(model.Document) error { return boom })
	require.ErrorIs(t, err, boom)

	err = s.Watch(context.Background(), "u2", model.CollectionUsers, "u1", func(model.Document) error { return nil })
	require.ErrorIs(t, err, errs.ErrPermissionDenied)
}

func TestDocuments_WatchQueryResendsOnCollectionChange(t *testing.T) {
	t.Parallel()
	s, repo := newDocs(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, repo.Set(ctx, model.CollectionUsers, "u1", model.Fields{model.FieldStudentID: "2021-000123"}, false))

	got := make(chan []model.Document, 8)
	q := model.Query{Collection: model.CollectionTransactions, Field: model.FieldTxStudentID, Value: "2021-000123", OrderBy: model.FieldTxTimestamp}
	go func() {
		_ = s.WatchQuery(ctx, "u1", q, func(d []model.Document) error {
			got <- d
			return nil
		})
	}()

	require.Empty(t, <-got)
	_, err := repo.Add(context.Background(), model.CollectionTransactions, model.Fields{model.FieldTxStudentID: "2021-000123"})
	require.NoError(t, err)

	select {
	case docs := <-got:
		require.Len(t, docs, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no result after insert")
	}
}
