// Package convert maps domain values to and from the google.protobuf.Struct
// messages carried by the Backend service.
package convert

import (
	"fmt"
	"time"

	"github.com/and161185/barkcard/internal/model"
	"google.golang.org/protobuf/types/known/structpb"
)

// --- helpers ---

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func boolean(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

func obj(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func kvStruct(kv ...string) *structpb.Struct {
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		out.Fields[kv[i]] = structpb.NewStringValue(kv[i+1])
	}
	return out
}

// FieldsToStruct encodes a record payload.
func FieldsToStruct(f model.Fields) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(f)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return s, nil
}

// FieldsFromStruct decodes a record payload; numbers come back as float64.
func FieldsFromStruct(s *structpb.Struct) model.Fields {
	if s == nil {
		return model.Fields{}
	}
	return model.Fields(s.AsMap())
}

// --- Auth ---

// CredentialsToStruct builds a SignUp/SignIn request.
func CredentialsToStruct(email, password string) *structpb.Struct {
	return kvStruct("email", email, "password", password)
}

// CredentialsFromStruct reads a SignUp/SignIn request.
func CredentialsFromStruct(s *structpb.Struct) (email, password string) {
	return str(s, "email"), str(s, "password")
}

// TokenToStruct builds a VerifyEmail request.
func TokenToStruct(token string) *structpb.Struct { return kvStruct("token", token) }

// TokenFromStruct reads a VerifyEmail request.
func TokenFromStruct(s *structpb.Struct) string { return str(s, "token") }

// IdentityToStruct encodes what the auth provider reports.
func IdentityToStruct(id model.Identity) *structpb.Struct {
	s := kvStruct("userId", id.UserID, "email", id.Email)
	s.Fields["emailVerified"] = structpb.NewBoolValue(id.EmailVerified)
	return s
}

// IdentityFromStruct decodes an identity.
func IdentityFromStruct(s *structpb.Struct) model.Identity {
	return model.Identity{
		UserID:        str(s, "userId"),
		Email:         str(s, "email"),
		EmailVerified: boolean(s, "emailVerified"),
	}
}

// SessionToStruct encodes a SignIn/Refresh response.
func SessionToStruct(tok model.Tokens, id model.Identity) *structpb.Struct {
	s := kvStruct("accessToken", tok.AccessToken, "expiresAt", ts(tok.ExpiresAt))
	s.Fields["identity"] = structpb.NewStructValue(IdentityToStruct(id))
	return s
}

// SessionFromStruct decodes a SignIn/Refresh response.
func SessionFromStruct(s *structpb.Struct) (model.Tokens, model.Identity) {
	tok := model.Tokens{AccessToken: str(s, "accessToken"), ExpiresAt: parseTS(str(s, "expiresAt"))}
	return tok, IdentityFromStruct(obj(s, "identity"))
}

// --- Documents ---

// RefToStruct addresses one record.
func RefToStruct(collection, id string) *structpb.Struct {
	return kvStruct("collection", collection, "id", id)
}

// RefFromStruct reads a record address.
func RefFromStruct(s *structpb.Struct) (collection, id string) {
	return str(s, "collection"), str(s, "id")
}

// Write is a decoded Update/Set/Add request.
type Write struct {
	Collection string
	ID         string
	Fields     model.Fields
	Merge      bool
}

// WriteToStruct encodes a write request.
func WriteToStruct(w Write) (*structpb.Struct, error) {
	fields, err := FieldsToStruct(w.Fields)
	if err != nil {
		return nil, err
	}
	s := RefToStruct(w.Collection, w.ID)
	s.Fields["fields"] = structpb.NewStructValue(fields)
	s.Fields["merge"] = structpb.NewBoolValue(w.Merge)
	return s, nil
}

// WriteFromStruct decodes a write request.
func WriteFromStruct(s *structpb.Struct) Write {
	c, id := RefFromStruct(s)
	return Write{Collection: c, ID: id, Fields: FieldsFromStruct(obj(s, "fields")), Merge: boolean(s, "merge")}
}

// DocumentToStruct encodes a snapshot.
func DocumentToStruct(doc model.Document) (*structpb.Struct, error) {
	fields, err := FieldsToStruct(doc.Fields)
	if err != nil {
		return nil, err
	}
	s := kvStruct("collection", doc.Collection, "id", doc.ID, "updatedAt", ts(doc.UpdatedAt))
	s.Fields["exists"] = structpb.NewBoolValue(doc.Exists)
	s.Fields["fields"] = structpb.NewStructValue(fields)
	return s, nil
}

// DocumentFromStruct decodes a snapshot.
func DocumentFromStruct(s *structpb.Struct) model.Document {
	return model.Document{
		Collection: str(s, "collection"),
		ID:         str(s, "id"),
		Exists:     boolean(s, "exists"),
		Fields:     FieldsFromStruct(obj(s, "fields")),
		UpdatedAt:  parseTS(str(s, "updatedAt")),
	}
}

// DocumentsToStruct encodes a query result.
func DocumentsToStruct(docs []model.Document) (*structpb.Struct, error) {
	list := make([]*structpb.Value, 0, len(docs))
	for _, d := range docs {
		s, err := DocumentToStruct(d)
		if err != nil {
			return nil, err
		}
		list = append(list, structpb.NewStructValue(s))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"documents": structpb.NewListValue(&structpb.ListValue{Values: list}),
	}}, nil
}

// DocumentsFromStruct decodes a query result.
func DocumentsFromStruct(s *structpb.Struct) []model.Document {
	vals := s.GetFields()["documents"].GetListValue().GetValues()
	out := make([]model.Document, 0, len(vals))
	for _, v := range vals {
		out = append(out, DocumentFromStruct(v.GetStructValue()))
	}
	return out
}

// AddedToStruct encodes the id assigned by AddDocument.
func AddedToStruct(id string) *structpb.Struct { return kvStruct("id", id) }

// AddedFromStruct decodes the id assigned by AddDocument.
func AddedFromStruct(s *structpb.Struct) string { return str(s, "id") }

// QueryToStruct encodes a query.
func QueryToStruct(q model.Query) *structpb.Struct {
	s := kvStruct("collection", q.Collection, "field", q.Field, "value", q.Value, "orderBy", q.OrderBy)
	s.Fields["descending"] = structpb.NewBoolValue(q.Descending)
	return s
}

// QueryFromStruct decodes a query.
func QueryFromStruct(s *structpb.Struct) model.Query {
	return model.Query{
		Collection: str(s, "collection"),
		Field:      str(s, "field"),
		Value:      str(s, "value"),
		OrderBy:    str(s, "orderBy"),
		Descending: boolean(s, "descending"),
	}
}
