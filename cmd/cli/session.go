package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/remote"
	"github.com/and161185/barkcard/internal/session"
)

var errNotSignedIn = errors.New("not signed in (run bark login)")

// Both remote collaborators plug into the session core.
var (
	_ session.AuthProvider  = (*remote.Auth)(nil)
	_ session.DocumentStore = (*remote.Documents)(nil)
)

// liveSession is a connected client with a running monitor.
type liveSession struct {
	client  *remote.Client
	monitor *session.Monitor
}

func (a *app) openSession(ctx context.Context) (*liveSession, error) {
	c, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	m := session.NewMonitor(c.Auth, c.Docs, a.log)
	m.Start(ctx)
	return &liveSession{client: c, monitor: m}, nil
}

func (s *liveSession) Close() {
	s.monitor.Stop()
	_ = s.client.Close()
}

func settled(v session.View) bool {
	return !v.Loading && v.State != session.StateUnknown
}

// waitFor blocks until the monitor publishes a view matching pred.
func waitFor(ctx context.Context, m *session.Monitor, pred func(session.View) bool) (session.View, error) {
	ch := make(chan session.View, 1)
	cancel := m.Subscribe(func(v session.View) {
		if pred(v) {
			select {
			case ch <- v:
			default:
			}
		}
	})
	defer cancel()

	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return m.View(), fmt.Errorf("waiting for session: %w", ctx.Err())
	}
}

// signedIn waits for the session to settle and requires a loaded profile.
func (s *liveSession) signedIn(ctx context.Context) (session.View, error) {
	v, err := waitFor(ctx, s.monitor, settled)
	if err != nil {
		return v, err
	}
	switch {
	case v.State == session.StateAwaitingVerification:
		return v, fmt.Errorf("%w (check your inbox, then run bark recheck)", errs.ErrEmailNotVerified)
	case !v.State.Authenticated():
		return v, errNotSignedIn
	}
	return v, nil
}

type userOut struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	EmailVerified   bool    `json:"emailVerified"`
	DisplayName     string  `json:"displayName,omitempty"`
	StudentID       string  `json:"studentId,omitempty"`
	Balance         float64 `json:"balance"`
	TotalIncome     float64 `json:"totalIncome"`
	TotalExpenses   float64 `json:"totalExpenses"`
	ProfileComplete bool    `json:"profileComplete"`
}

type statusOut struct {
	State                string   `json:"state"`
	Screen               string   `json:"screen"`
	VerificationReminder bool     `json:"verificationReminder,omitempty"`
	Destinations         []string `json:"destinations,omitempty"`
	User                 *userOut `json:"user,omitempty"`
}

func statusOf(v session.View) statusOut {
	r := session.RouteFor(v)
	out := statusOut{
		State:                v.State.String(),
		Screen:               string(r.Screen),
		VerificationReminder: r.VerificationReminder,
	}
	for _, d := range r.Destinations {
		out.Destinations = append(out.Destinations, string(d))
	}
	if v.Identity != nil {
		p := v.Profile
		out.User = &userOut{
			ID:              v.Identity.UserID,
			Email:           v.Identity.Email,
			EmailVerified:   v.Identity.EmailVerified,
			DisplayName:     p.DisplayName,
			StudentID:       p.StudentID,
			Balance:         p.Balance,
			TotalIncome:     p.TotalIncome,
			TotalExpenses:   p.TotalExpenses,
			ProfileComplete: p.Complete(),
		}
	}
	return out
}

// routeLine is the one-line form used by watch.
func routeLine(v session.View) string {
	r := session.RouteFor(v)
	line := fmt.Sprintf("state=%s screen=%s", v.State, r.Screen)
	if r.VerificationReminder {
		line += " reminder=verify-email"
	}
	if v.Identity != nil {
		line += " user=" + v.Identity.Email
	}
	return line
}

// syncWriter serializes writes from observer callbacks.
type syncWriter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

// printChanged skips a line equal to the previous one.
func (s *syncWriter) printChanged(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line == s.last {
		return
	}
	s.last = line
	fmt.Fprintln(s.w, line)
}

func (s *syncWriter) json(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	printJSON(s.w, v)
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
