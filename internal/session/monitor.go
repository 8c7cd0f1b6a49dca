package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/and161185/barkcard/internal/model"
	"go.uber.org/zap"
)

// Monitor is the single owner of the session state. It reacts to identity
// changes from the auth provider and to snapshots from the profile
// subscription, and publishes a View to observers after every transition.
type Monitor struct {
	auth AuthProvider
	subs *Subscriber
	log  *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	view      View
	active    *Subscription
	unsubAuth func()
	stopped   bool

	observers map[int]func(View)
	nextObs   int
	fresh     map[int]struct{}
	flushing  bool
	pending   bool
}

// NewMonitor wires a Monitor to its collaborators. It stays in the initial
// loading state until Start is called or an identity is pushed.
func NewMonitor(auth AuthProvider, docs DocumentStore, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		auth:      auth,
		subs:      NewSubscriber(docs, log),
		log:       log,
		ctx:       context.Background(),
		view:      View{State: StateUnknown, Loading: true},
		observers: make(map[int]func(View)),
		fresh:     make(map[int]struct{}),
	}
}

// Start registers with the auth provider. ctx bounds every profile
// subscription opened by the monitor.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.unsubAuth != nil || m.stopped {
		m.mu.Unlock()
		return
	}
	m.ctx = ctx
	m.mu.Unlock()

	unsub := m.auth.OnAuthStateChanged(m.OnIdentityChanged)

	m.mu.Lock()
	m.unsubAuth = unsub
	m.mu.Unlock()
}

// Stop detaches from the auth provider and closes the profile subscription.
// The last view stays readable.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	unsub := m.unsubAuth
	m.unsubAuth = nil
	sub := m.active
	m.active = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	sub.Close()
}

// View returns the current snapshot.
func (m *Monitor) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyView(m.view)
}

// Subscribe calls fn with the current view and then after every transition.
// Views may be coalesced: fn always sees the latest one. The first call is
// synchronous unless another goroutine is flushing, in which case that
// flush delivers it.
func (m *Monitor) Subscribe(fn func(View)) (cancel func()) {
	m.mu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.fresh[id] = struct{}{}
	m.mu.Unlock()

	m.deliver()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			delete(m.fresh, id)
			m.mu.Unlock()
		})
	}
}

// OnIdentityChanged applies the latest identity from the auth provider.
// nil means signed out.
func (m *Monitor) OnIdentityChanged(id *model.Identity) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}

	if id == nil || !id.EmailVerified {
		next := View{State: StateUnauthenticated}
		if id != nil {
			ident := *id
			next = View{State: StateAwaitingVerification, Identity: &ident}
		}
		if m.active == nil && sameView(m.view, next) {
			m.mu.Unlock()
			return
		}
		old := m.active
		m.active = nil
		m.view = next
		m.mu.Unlock()

		old.Close()
		m.flush()
		return
	}

	ident := *id
	if m.active != nil && m.active.UserID() == ident.UserID {
		// Same user re-reported: keep the live subscription.
		m.view.Identity = &ident
		m.mu.Unlock()
		m.flush()
		return
	}

	old := m.active
	sub := m.subs.prepare(m.ctx, ident.UserID, ident.Email, m)
	m.active = sub
	m.view = View{State: StateAwaitingProfile, Identity: &ident, Loading: true}
	m.mu.Unlock()

	old.Close()
	m.flush()
	sub.start()
}

// Logout tears the session down and then signs out of the auth provider.
func (m *Monitor) Logout(ctx context.Context) error {
	m.OnIdentityChanged(nil)
	if err := m.auth.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// CheckVerification reloads an unverified identity and attaches the profile
// once the email is confirmed. It reports whether the identity is verified.
func (m *Monitor) CheckVerification(ctx context.Context) (bool, error) {
	m.mu.Lock()
	var cur *model.Identity
	if m.view.Identity != nil {
		c := *m.view.Identity
		cur = &c
	}
	m.mu.Unlock()

	if cur == nil {
		return false, nil
	}
	if cur.EmailVerified {
		return true, nil
	}

	fresh, err := m.auth.Reload(ctx, *cur)
	if err != nil {
		return false, fmt.Errorf("reload identity: %w", err)
	}
	if !fresh.EmailVerified {
		return false, nil
	}

	m.mu.Lock()
	current := m.view.Identity != nil && m.view.Identity.UserID == cur.UserID
	m.mu.Unlock()
	if current {
		m.OnIdentityChanged(&fresh)
	}
	return true, nil
}

func (m *Monitor) profileChanged(sub *Subscription, p model.Profile) {
	m.mu.Lock()
	if sub != m.active {
		m.mu.Unlock()
		return
	}
	state := StateIncompleteProfile
	if p.Complete() {
		state = StateComplete
	}
	m.view = View{State: state, Identity: m.view.Identity, Profile: p}
	m.mu.Unlock()

	m.flush()
}

func (m *Monitor) deactivated(sub *Subscription) {
	m.mu.Lock()
	if sub != m.active {
		m.mu.Unlock()
		return
	}
	m.active = nil
	m.view = View{State: StateUnauthenticated}
	ctx := m.ctx
	m.mu.Unlock()

	m.log.Info("profile deactivated, signing out", zap.String("user_id", sub.UserID()))
	sub.Close()
	m.flush()

	if err := m.auth.SignOut(context.WithoutCancel(ctx)); err != nil {
		m.log.Warn("sign out after deactivation failed", zap.Error(err))
	}
}

// flush delivers the latest view to every observer.
func (m *Monitor) flush() {
	m.mu.Lock()
	m.pending = true
	m.mu.Unlock()
	m.deliver()
}

// deliver runs pending deliveries: the latest view to all observers after a
// transition, or to newly subscribed ones only. A call made while another
// is running is folded into it, so observers never run concurrently.
func (m *Monitor) deliver() {
	m.mu.Lock()
	if m.flushing {
		m.mu.Unlock()
		return
	}
	m.flushing = true
	for m.pending || len(m.fresh) > 0 {
		v := copyView(m.view)
		fns := make([]func(View), 0, len(m.observers))
		if m.pending {
			for _, fn := range m.observers {
				fns = append(fns, fn)
			}
		} else {
			for id := range m.fresh {
				fns = append(fns, m.observers[id])
			}
		}
		m.pending = false
		clear(m.fresh)
		m.mu.Unlock()

		for _, fn := range fns {
			fn(v)
		}

		m.mu.Lock()
	}
	m.flushing = false
	m.mu.Unlock()
}

func copyView(v View) View {
	if v.Identity != nil {
		id := *v.Identity
		v.Identity = &id
	}
	return v
}

func sameView(a, b View) bool {
	if a.State != b.State || a.Loading != b.Loading {
		return false
	}
	if (a.Identity == nil) != (b.Identity == nil) {
		return false
	}
	return a.Identity == nil || *a.Identity == *b.Identity
}
