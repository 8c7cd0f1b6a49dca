package session

import (
	"context"
	"errors"
	"sync"

	"github.com/and161185/barkcard/internal/model"
)

type fakeAuth struct {
	mu        sync.Mutex
	current   *model.Identity
	listeners map[int]func(*model.Identity)
	next      int
	signOuts  int
	reloaded  model.Identity
	reloadErr error
}

func newFakeAuth(cur *model.Identity) *fakeAuth {
	return &fakeAuth{current: cur, listeners: map[int]func(*model.Identity){}}
}

func (a *fakeAuth) OnAuthStateChanged(fn func(*model.Identity)) func() {
	a.mu.Lock()
	id := a.next
	a.next++
	a.listeners[id] = fn
	cur := a.current
	a.mu.Unlock()
	fn(cur)
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *fakeAuth) emit(id *model.Identity) {
	a.mu.Lock()
	a.current = id
	fns := make([]func(*model.Identity), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(id)
	}
}

func (a *fakeAuth) SignOut(context.Context) error {
	a.mu.Lock()
	a.signOuts++
	a.mu.Unlock()
	a.emit(nil)
	return nil
}

func (a *fakeAuth) Reload(_ context.Context, id model.Identity) (model.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reloadErr != nil {
		return model.Identity{}, a.reloadErr
	}
	if a.reloaded.UserID == "" {
		return id, nil
	}
	return a.reloaded, nil
}

func (a *fakeAuth) signOutCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signOuts
}

func (a *fakeAuth) listenerCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listeners)
}

type fakeSub struct {
	docs    *fakeDocs
	id      string
	onNext  func(model.Document)
	onError func(error)
	unsubs  int
}

// next delivers a snapshot even after unsubscribe, like a late network callback.
func (s *fakeSub) next(f model.Fields) {
	s.onNext(model.Document{Collection: model.CollectionUsers, ID: s.id, Exists: true, Fields: f})
}

func (s *fakeSub) fail(err error) { s.onError(err) }

type fakeDocs struct {
	mu       sync.Mutex
	subs     []*fakeSub
	open     int
	maxOpen  int
	gets     int
	subErr   error
	getDoc   model.Document
	getErr   error
	onSubscr func()
}

func (d *fakeDocs) Subscribe(_ context.Context, collection, id string,
	onNext func(model.Document), onError func(error)) (func(), error) {
	d.mu.Lock()
	if d.subErr != nil {
		err := d.subErr
		d.mu.Unlock()
		return nil, err
	}
	s := &fakeSub{docs: d, id: id, onNext: onNext, onError: onError}
	d.subs = append(d.subs, s)
	d.open++
	if d.open > d.maxOpen {
		d.maxOpen = d.open
	}
	hook := d.onSubscr
	d.mu.Unlock()

	if hook != nil {
		hook()
	}

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		s.unsubs++
		if s.unsubs == 1 {
			d.open--
		}
	}, nil
}

func (d *fakeDocs) GetOnce(_ context.Context, collection, id string) (model.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gets++
	if d.getErr != nil {
		return model.Document{}, d.getErr
	}
	return d.getDoc, nil
}

func (d *fakeDocs) Update(context.Context, string, string, model.Fields) error {
	return errors.New("not used")
}

func (d *fakeDocs) last() *fakeSub {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.subs) == 0 {
		return nil
	}
	return d.subs[len(d.subs)-1]
}

func (d *fakeDocs) counts() (subscribed, open, maxOpen, gets int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs), d.open, d.maxOpen, d.gets
}

func verified(uid string) *model.Identity {
	return &model.Identity{UserID: uid, Email: uid + "@school.edu", EmailVerified: true}
}

func unverified(uid string) *model.Identity {
	return &model.Identity{UserID: uid, Email: uid + "@school.edu"}
}
