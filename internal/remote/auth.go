package remote

import (
	"context"
	"errors"
	"sync"

	"github.com/and161185/barkcard/internal/api"
	"github.com/and161185/barkcard/internal/convert"
	"github.com/and161185/barkcard/internal/model"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

// Auth is the client auth provider. It restores the persisted session on
// construction and reports identity changes to registered listeners.
type Auth struct {
	backend *api.BackendClient
	store   *SessionStore
	log     *zap.Logger

	mu        sync.Mutex
	sess      *Session
	listeners map[uint64]func(*model.Identity)
	fresh     map[uint64]struct{}
	next      uint64
	notifying bool
	pending   bool
}

// NewAuth builds the provider; an unreadable session file counts as signed out.
func NewAuth(backend *api.BackendClient, store *SessionStore, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Auth{backend: backend, store: store, log: log, listeners: make(map[uint64]func(*model.Identity)), fresh: make(map[uint64]struct{})}
	sess, err := store.Load()
	switch {
	case err == nil:
		a.sess = &sess
	case errors.Is(err, ErrNoSession):
	default:
		log.Warn("session restore failed", zap.Error(err))
	}
	return a
}

// Token returns the current access token or "".
func (a *Auth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess == nil {
		return ""
	}
	return a.sess.AccessToken
}

// Current returns the signed-in identity or nil.
func (a *Auth) Current() *model.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentLocked()
}

func (a *Auth) currentLocked() *model.Identity {
	if a.sess == nil {
		return nil
	}
	id := a.sess.Identity
	return &id
}

// OnAuthStateChanged registers fn, calls it with the current identity and
// again on every sign-in and sign-out. The returned func unregisters.
func (a *Auth) OnAuthStateChanged(fn func(*model.Identity)) func() {
	a.mu.Lock()
	a.next++
	n := a.next
	a.listeners[n] = fn
	a.fresh[n] = struct{}{}
	a.mu.Unlock()

	a.notify()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, n)
			delete(a.fresh, n)
			a.mu.Unlock()
		})
	}
}

// set replaces the session and notifies listeners.
func (a *Auth) set(sess *Session) {
	a.mu.Lock()
	a.sess = sess
	a.pending = true
	a.mu.Unlock()

	a.notify()
}

// notify delivers the current identity outside the lock. A call made while
// another goroutine is notifying is folded into that run, so listeners see
// changes one at a time and always end on the latest identity.
func (a *Auth) notify() {
	a.mu.Lock()
	if a.notifying {
		a.mu.Unlock()
		return
	}
	a.notifying = true
	for a.pending || len(a.fresh) > 0 {
		cur := a.currentLocked()
		fns := make([]func(*model.Identity), 0, len(a.listeners))
		if a.pending {
			for _, fn := range a.listeners {
				fns = append(fns, fn)
			}
		} else {
			for n := range a.fresh {
				fns = append(fns, a.listeners[n])
			}
		}
		a.pending = false
		clear(a.fresh)
		a.mu.Unlock()

		for _, fn := range fns {
			fn(cur)
		}

		a.mu.Lock()
	}
	a.notifying = false
	a.mu.Unlock()
}

// SignUp creates an account. It does not sign in.
func (a *Auth) SignUp(ctx context.Context, email, password string) (model.Identity, error) {
	resp, err := a.backend.SignUp(ctx, convert.CredentialsToStruct(email, password))
	if err != nil {
		return model.Identity{}, fromStatus(err)
	}
	return convert.IdentityFromStruct(resp), nil
}

// SignIn authenticates, persists the session and notifies listeners.
func (a *Auth) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	resp, err := a.backend.SignIn(ctx, convert.CredentialsToStruct(email, password))
	if err != nil {
		return model.Identity{}, fromStatus(err)
	}
	tok, id := convert.SessionFromStruct(resp)
	sess := Session{AccessToken: tok.AccessToken, ExpiresAt: tok.ExpiresAt, Identity: id}
	if err := a.store.Save(sess); err != nil {
		a.log.Warn("session not persisted", zap.Error(err))
	}
	a.set(&sess)
	return id, nil
}

// SignOut forgets the session and notifies listeners with nil.
func (a *Auth) SignOut(context.Context) error {
	err := a.store.Clear()
	a.set(nil)
	return err
}

// Reload fetches the identity's current flags from the server. It refreshes the
// token but does not notify listeners.
func (a *Auth) Reload(ctx context.Context, id model.Identity) (model.Identity, error) {
	resp, err := a.backend.Refresh(ctx, &structpb.Struct{})
	if err != nil {
		return id, fromStatus(err)
	}
	tok, fresh := convert.SessionFromStruct(resp)

	a.mu.Lock()
	if a.sess == nil || a.sess.Identity.UserID != fresh.UserID {
		a.mu.Unlock()
		return fresh, nil
	}
	sess := Session{AccessToken: tok.AccessToken, ExpiresAt: tok.ExpiresAt, Identity: fresh}
	a.sess = &sess
	a.mu.Unlock()

	if err := a.store.Save(sess); err != nil {
		a.log.Warn("session not persisted", zap.Error(err))
	}
	return fresh, nil
}

// VerifyEmail consumes a verification token.
func (a *Auth) VerifyEmail(ctx context.Context, token string) (model.Identity, error) {
	resp, err := a.backend.VerifyEmail(ctx, convert.TokenToStruct(token))
	if err != nil {
		return model.Identity{}, fromStatus(err)
	}
	return convert.IdentityFromStruct(resp), nil
}
