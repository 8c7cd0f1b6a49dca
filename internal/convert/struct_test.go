package convert

import (
	"testing"
	"time"

	"github.com/and161185/barkcard/internal/model"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDocumentStruct_PreservesNestedPayload(t *testing.T) {
	t.Parallel()

	upd := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	doc := model.Document{
		Collection: model.CollectionTransactions,
		ID:         "t1",
		Exists:     true,
		UpdatedAt:  upd,
		Fields: model.Fields{
			model.FieldTxTotal:   float64(125),
			model.FieldTxOrderID: "o-1",
			model.FieldTxItems:   []any{map[string]any{"v_Name": "Rice"}, map[string]any{"v_Name": "Tea"}},
		},
	}
	s, err := DocumentToStruct(doc)
	if err != nil {
		t.Fatalf("DocumentToStruct: %v", err)
	}
	got := DocumentFromStruct(s)
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}

	tx := model.TransactionFromDocument(got)
	if tx.Title != "Rice, Tea" || tx.Amount != 125 {
		t.Fatalf("decoded document maps badly: %+v", tx)
	}
}

func TestFieldsToStruct_RejectsUnsupported(t *testing.T) {
	t.Parallel()
	if _, err := FieldsToStruct(model.Fields{"ch": make(chan int)}); err == nil {
		t.Fatalf("want error for channel value")
	}
	if got := FieldsFromStruct(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil struct must decode to empty fields, got %v", got)
	}
}

func TestMissingDocument_EncodesExistsFalse(t *testing.T) {
	t.Parallel()
	s, err := DocumentToStruct(model.Document{Collection: model.CollectionUsers, ID: "u1"})
	if err != nil {
		t.Fatalf("DocumentToStruct: %v", err)
	}
	if _, ok := s.Fields["exists"]; !ok {
		t.Fatalf("exists flag must always be present")
	}
	got := DocumentFromStruct(s)
	if got.Exists || got.ID != "u1" || !got.UpdatedAt.IsZero() {
		t.Fatalf("bad missing document: %+v", got)
	}
}

func TestSessionStruct(t *testing.T) {
	t.Parallel()
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := model.Tokens{AccessToken: "jwt", ExpiresAt: exp}
	id := model.Identity{UserID: "u1", Email: "ana@school.edu", EmailVerified: true}

	gotTok, gotID := SessionFromStruct(SessionToStruct(tok, id))
	if gotTok.AccessToken != "jwt" || !gotTok.ExpiresAt.Equal(exp) {
		t.Fatalf("tokens mismatch: %+v", gotTok)
	}
	if gotID != id {
		t.Fatalf("identity mismatch: %+v", gotID)
	}
}

func TestQueryAndWriteStruct(t *testing.T) {
	t.Parallel()
	q := model.Query{Collection: model.CollectionTransactions, Field: model.FieldTxStudentID, Value: "2021-000123", OrderBy: model.FieldTxTimestamp, Descending: true}
	if got := QueryFromStruct(QueryToStruct(q)); got != q {
		t.Fatalf("query mismatch: %+v", got)
	}

	w := Write{Collection: model.CollectionUsers, ID: "u1", Fields: model.Fields{model.FieldFirstName: "Ana"}, Merge: true}
	s, err := WriteToStruct(w)
	if err != nil {
		t.Fatalf("WriteToStruct: %v", err)
	}
	if diff := cmp.Diff(w, WriteFromStruct(s)); diff != "" {
		t.Fatalf("write mismatch:\n%s", diff)
	}
}

func TestDocumentsStruct_EmptyList(t *testing.T) {
	t.Parallel()
	s, err := DocumentsToStruct(nil)
	if err != nil {
		t.Fatalf("DocumentsToStruct: %v", err)
	}
	if got := DocumentsFromStruct(s); len(got) != 0 {
		t.Fatalf("want empty, got %d", len(got))
	}
	if got := DocumentsFromStruct(&structpb.Struct{}); len(got) != 0 {
		t.Fatalf("want empty for missing key, got %d", len(got))
	}
}
