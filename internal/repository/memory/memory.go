// Package memory provides in-process repositories for development servers and tests.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AccountRepo keeps accounts in a map.
type AccountRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]model.Account
}

// NewAccountRepo returns an empty account store.
func NewAccountRepo() *AccountRepo {
	return &AccountRepo{byID: make(map[uuid.UUID]model.Account)}
}

// Create inserts an account; emails are unique.
func (r *AccountRepo) Create(_ context.Context, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Email == a.Email {
			return errs.ErrAlreadyExists
		}
	}
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.byID[a.ID] = cp
	return nil
}

// GetByID loads an account.
func (r *AccountRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

// GetByEmail loads an account by email.
func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, errs.ErrNotFound
}

// MarkVerified consumes token.
func (r *AccountRepo) MarkVerified(_ context.Context, token string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token == "" {
		return nil, errs.ErrInvalidToken
	}
	for id, a := range r.byID {
		if a.VerifyToken == token {
			a.EmailVerified = true
			a.VerifyToken = ""
			r.byID[id] = a
			return &a, nil
		}
	}
	return nil, errs.ErrInvalidToken
}

type docKey struct{ collection, id string }

type stored struct {
	raw []byte
	upd time.Time
}

// DocumentRepo keeps records as JSON blobs, so readers never share maps with writers.
type DocumentRepo struct {
	mu       sync.Mutex
	docs     map[docKey]stored
	clock    time.Time
	onChange func(collection, id string)
}

// NewDocumentRepo returns an empty store. onChange, if set, runs after every write outside the lock.
func NewDocumentRepo(onChange func(collection, id string)) *DocumentRepo {
	return &DocumentRepo{docs: make(map[docKey]stored), onChange: onChange}
}

// tick returns a strictly increasing timestamp.
func (r *DocumentRepo) tick() time.Time {
	now := time.Now()
	if !now.After(r.clock) {
		now = r.clock.Add(time.Microsecond)
	}
	r.clock = now
	return now
}

func (r *DocumentRepo) changed(collection, id string) {
	if r.onChange != nil {
		r.onChange(collection, id)
	}
}

// Get returns a copy of the record.
func (r *DocumentRepo) Get(_ context.Context, collection, id string) (model.Document, error) {
	r.mu.Lock()
	s, ok := r.docs[docKey{collection, id}]
	r.mu.Unlock()
	if !ok {
		return model.Document{}, errs.ErrNotFound
	}
	return decode(collection, id, s)
}

// Set writes a record.
func (r *DocumentRepo) Set(_ context.Context, collection, id string, fields model.Fields, merge bool) error {
	if err := r.write(collection, id, fields, merge, false); err != nil {
		return err
	}
	r.changed(collection, id)
	return nil
}

// Update merges into an existing record.
func (r *DocumentRepo) Update(_ context.Context, collection, id string, fields model.Fields) error {
	if err := r.write(collection, id, fields, true, true); err != nil {
		return err
	}
	r.changed(collection, id)
	return nil
}

// Add inserts under a fresh id.
func (r *DocumentRepo) Add(_ context.Context, collection string, fields model.Fields) (string, error) {
	id := uuid.Must(uuid.NewV4()).String()
	if err := r.write(collection, id, fields, false, false); err != nil {
		return "", err
	}
	r.changed(collection, id)
	return id, nil
}

func (r *DocumentRepo) write(collection, id string, fields model.Fields, merge, mustExist bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := docKey{collection, id}
	cur, ok := r.docs[k]
	if mustExist && !ok {
		return errs.ErrNotFound
	}
	next := model.Fields{}
	if ok && merge {
		if err := json.Unmarshal(cur.raw, &next); err != nil {
			return err
		}
	}
	for key, v := range fields {
		next[key] = v
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	r.docs[k] = stored{raw: raw, upd: r.tick()}
	return nil
}

// Query filters by string equality on q.Field and sorts by q.OrderBy.
func (r *DocumentRepo) Query(_ context.Context, q model.Query) ([]model.Document, error) {
	r.mu.Lock()
	var out []model.Document
	for k, s := range r.docs {
		if k.collection != q.Collection {
			continue
		}
		doc, err := decode(k.collection, k.id, s)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		if doc.Fields.String(q.Field) == q.Value {
			out = append(out, doc)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Fields.String(q.OrderBy), out[j].Fields.String(q.OrderBy)
		if a == b {
			return out[i].ID < out[j].ID
		}
		if q.Descending {
			return strings.Compare(a, b) > 0
		}
		return strings.Compare(a, b) < 0
	})
	return out, nil
}

func decode(collection, id string, s stored) (model.Document, error) {
	f := model.Fields{}
	if err := json.Unmarshal(s.raw, &f); err != nil {
		return model.Document{}, err
	}
	return model.Document{Collection: collection, ID: id, Exists: true, Fields: f, UpdatedAt: s.upd}, nil
}
