package memory

import (
	"context"
	"testing"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
	"github.com/and161185/barkcard/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

var (
	_ repository.AccountRepository  = (*AccountRepo)(nil)
	_ repository.DocumentRepository = (*DocumentRepo)(nil)
)

func TestAccountRepo_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewAccountRepo()
	a := &model.Account{ID: uuid.Must(uuid.NewV4()), Email: "ana@school.edu", VerifyToken: "tok"}

	require.NoError(t, r.Create(ctx, a))
	require.ErrorIs(t, r.Create(ctx, &model.Account{ID: uuid.Must(uuid.NewV4()), Email: "ana@school.edu"}), errs.ErrAlreadyExists)

	got, err := r.MarkVerified(ctx, "tok")
	require.NoError(t, err)
	require.True(t, got.EmailVerified)

	_, err = r.MarkVerified(ctx, "tok")
	require.ErrorIs(t, err, errs.ErrInvalidToken)

	byEmail, err := r.GetByEmail(ctx, "ana@school.edu")
	require.NoError(t, err)
	require.True(t, byEmail.EmailVerified)
}

func TestDocumentRepo_MergeReplaceAndNotify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var changes []string
	r := NewDocumentRepo(func(c, id string) { changes = append(changes, c+"/"+id) })

	require.ErrorIs(t, r.Update(ctx, "tbl_User", "u1", model.Fields{"a": 1}), errs.ErrNotFound)

	require.NoError(t, r.Set(ctx, "tbl_User", "u1", model.Fields{"a": "x", "b": "y"}, false))
	first, err := r.Get(ctx, "tbl_User", "u1")
	require.NoError(t, err)

	require.NoError(t, r.Set(ctx, "tbl_User", "u1", model.Fields{"b": "z"}, true))
	doc, err := r.Get(ctx, "tbl_User", "u1")
	require.NoError(t, err)
	require.Equal(t, "x", doc.Fields.String("a"))
	require.Equal(t, "z", doc.Fields.String("b"))
	require.True(t, doc.UpdatedAt.After(first.UpdatedAt))

	require.NoError(t, r.Set(ctx, "tbl_User", "u1", model.Fields{"c": true}, false))
	doc, err = r.Get(ctx, "tbl_User", "u1")
	require.NoError(t, err)
	require.Empty(t, doc.Fields.String("a"))
	require.True(t, doc.Fields.Bool("c"))

	require.Equal(t, []string{"tbl_User/u1", "tbl_User/u1", "tbl_User/u1"}, changes)
}

func TestDocumentRepo_QueryOrdersAndFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewDocumentRepo(nil)
	for _, f := range []model.Fields{
		{"v_StudentId": "s1", "v_Timestamp": "2024-01-01T00:00:00Z"},
		{"v_StudentId": "s1", "v_Timestamp": "2024-03-01T00:00:00Z"},
		{"v_StudentId": "s2", "v_Timestamp": "2024-02-01T00:00:00Z"},
	} {
		_, err := r.Add(ctx, "tbl_Transactions", f)
		require.NoError(t, err)
	}

	docs, err := r.Query(ctx, model.Query{
		Collection: "tbl_Transactions", Field: "v_StudentId", Value: "s1",
		OrderBy: "v_Timestamp", Descending: true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "2024-03-01T00:00:00Z", docs[0].Fields.String("v_Timestamp"))
}
