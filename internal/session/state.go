// Package session reconciles authentication state, profile completeness and
// the live profile subscription into a single routing decision.
//
// Monitor owns the state and is the only writer. Subscriber turns profile
// snapshots into display-ready profiles. Route maps a View to a screen.
package session

import (
	"context"

	"github.com/and161185/barkcard/internal/model"
)

// State is the derived session state.
type State int

const (
	// StateUnknown holds until the auth provider reports for the first time.
	StateUnknown State = iota
	StateUnauthenticated
	StateAwaitingVerification
	StateAwaitingProfile
	StateIncompleteProfile
	StateComplete
)

var stateNames = [...]string{
	StateUnknown:              "unknown",
	StateUnauthenticated:      "unauthenticated",
	StateAwaitingVerification: "awaiting-verification",
	StateAwaitingProfile:      "authenticated-awaiting-profile",
	StateIncompleteProfile:    "authenticated-incomplete-profile",
	StateComplete:             "authenticated-complete",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "invalid"
	}
	return stateNames[s]
}

// Authenticated reports whether a profile subscription belongs to this state.
func (s State) Authenticated() bool {
	return s == StateAwaitingProfile || s == StateIncompleteProfile || s == StateComplete
}

// View is a read-only snapshot of the session for screens.
type View struct {
	State    State
	Identity *model.Identity
	Profile  model.Profile
	Loading  bool
}

// AuthProvider is the authentication collaborator.
type AuthProvider interface {
	// OnAuthStateChanged calls fn with the current identity, then on every sign-in and sign-out.
	OnAuthStateChanged(fn func(*model.Identity)) (unsubscribe func())
	SignOut(ctx context.Context) error
	// Reload re-reads the identity's flags, notably EmailVerified.
	Reload(ctx context.Context, id model.Identity) (model.Identity, error)
}

// DocumentStore is the record collaborator.
type DocumentStore interface {
	// Subscribe delivers every snapshot of the record to onNext, or a terminal
	// failure to onError. Nothing is delivered once unsubscribe has been called.
	Subscribe(ctx context.Context, collection, id string,
		onNext func(model.Document), onError func(error)) (unsubscribe func(), err error)
	GetOnce(ctx context.Context, collection, id string) (model.Document, error)
	Update(ctx context.Context, collection, id string, fields model.Fields) error
}
