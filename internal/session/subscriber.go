package session

import (
	"context"
	"strings"
	"sync"

	"github.com/and161185/barkcard/internal/model"
	"go.uber.org/zap"
)

// events receives the outcome of a subscription. Implementations must drop
// calls from a subscription that is no longer current.
type events interface {
	profileChanged(sub *Subscription, p model.Profile)
	deactivated(sub *Subscription)
}

// Subscriber opens profile subscriptions.
type Subscriber struct {
	docs DocumentStore
	log  *zap.Logger
}

// NewSubscriber builds a Subscriber over docs.
func NewSubscriber(docs DocumentStore, log *zap.Logger) *Subscriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &Subscriber{docs: docs, log: log}
}

// Subscription is the handle of one live profile subscription.
type Subscription struct {
	s            *Subscriber
	userID       string
	sessionEmail string
	ev           events

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	fellBack bool
	unsub    func()
}

// prepare creates a handle without touching the store, so the owner can make
// it current before any snapshot can arrive.
func (s *Subscriber) prepare(ctx context.Context, userID, sessionEmail string, ev events) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	return &Subscription{s: s, userID: userID, sessionEmail: sessionEmail, ev: ev, ctx: ctx, cancel: cancel}
}

// UserID returns the subscribed record id.
func (sub *Subscription) UserID() string { return sub.userID }

// start opens the live subscription; a synchronous failure falls back to a one-shot read.
func (sub *Subscription) start() {
	unsub, err := sub.s.docs.Subscribe(sub.ctx, model.CollectionUsers, sub.userID, sub.onNext, sub.onError)
	if err != nil {
		sub.s.log.Warn("profile subscription failed", zap.String("user_id", sub.userID), zap.Error(err))
		sub.fallback()
		return
	}
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		unsub()
		return
	}
	sub.unsub = unsub
	sub.mu.Unlock()
}

func (sub *Subscription) isClosed() bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.closed
}

func (sub *Subscription) onNext(doc model.Document) {
	if sub.isClosed() {
		return
	}
	sub.deliver(doc)
}

func (sub *Subscription) deliver(doc model.Document) {
	rec := model.ProfileRecordFromFields(sub.userID, doc.Fields)
	if rec.Deactivated() {
		sub.ev.deactivated(sub)
		return
	}
	sub.ev.profileChanged(sub, Normalize(rec, sub.sessionEmail))
}

func (sub *Subscription) onError(err error) {
	if sub.isClosed() {
		return
	}
	sub.s.log.Warn("profile subscription error", zap.String("user_id", sub.userID), zap.Error(err))
	sub.fallback()
}

// fallback reads the record once. If that fails too, an empty incomplete
// profile is published so the user lands on profile completion.
func (sub *Subscription) fallback() {
	sub.mu.Lock()
	if sub.closed || sub.fellBack {
		sub.mu.Unlock()
		return
	}
	sub.fellBack = true
	sub.mu.Unlock()

	doc, err := sub.s.docs.GetOnce(sub.ctx, model.CollectionUsers, sub.userID)
	if sub.isClosed() {
		return
	}
	if err != nil {
		sub.s.log.Warn("profile read failed", zap.String("user_id", sub.userID), zap.Error(err))
		sub.ev.profileChanged(sub, Normalize(model.ProfileRecord{UserID: sub.userID}, sub.sessionEmail))
		return
	}
	sub.deliver(doc)
}

// Close detaches the subscription. It is idempotent, and no callback from
// this handle reaches the owner afterwards.
func (sub *Subscription) Close() {
	if sub == nil {
		return
	}
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.closed = true
	unsub := sub.unsub
	sub.unsub = nil
	sub.mu.Unlock()

	sub.cancel()
	if unsub != nil {
		unsub()
	}
}

// Normalize builds the display-ready profile. The display name is the trimmed
// first and last name, else the stored email, else the session email.
func Normalize(rec model.ProfileRecord, sessionEmail string) model.Profile {
	name := strings.TrimSpace(strings.TrimSpace(rec.FirstName) + " " + strings.TrimSpace(rec.LastName))
	switch {
	case name != "":
	case strings.TrimSpace(rec.Email) != "":
		name = strings.TrimSpace(rec.Email)
	default:
		name = sessionEmail
	}
	return model.Profile{ProfileRecord: rec, DisplayName: name}
}
