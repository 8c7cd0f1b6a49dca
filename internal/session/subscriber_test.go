package session

import (
	"context"
	"testing"

	"github.com/and161185/barkcard/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingEvents struct {
	profiles    []model.Profile
	deactivates int
}

func (r *recordingEvents) profileChanged(_ *Subscription, p model.Profile) {
	r.profiles = append(r.profiles, p)
}

func (r *recordingEvents) deactivated(*Subscription) { r.deactivates++ }

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	docs := &fakeDocs{}
	ev := &recordingEvents{}
	sub := NewSubscriber(docs, zaptest.NewLogger(t)).prepare(context.Background(), "u1", "u1@school.edu", ev)
	sub.start()

	fs := docs.last()
	fs.next(model.Fields{model.FieldFirstName: "Ana"})
	require.Len(t, ev.profiles, 1)

	sub.Close()
	sub.Close()
	require.Equal(t, 1, fs.unsubs)

	fs.next(model.Fields{model.FieldFirstName: "Late"})
	require.Len(t, ev.profiles, 1)

	var nilSub *Subscription
	nilSub.Close()
}

func TestSubscription_ClosedBeforeStart(t *testing.T) {
	t.Parallel()
	docs := &fakeDocs{}
	sub := NewSubscriber(docs, nil).prepare(context.Background(), "u1", "", &recordingEvents{})
	sub.Close()
	sub.start()

	_, open, _, _ := docs.counts()
	require.Zero(t, open)
}

func TestSubscription_Deactivated(t *testing.T) {
	t.Parallel()
	docs := &fakeDocs{}
	ev := &recordingEvents{}
	sub := NewSubscriber(docs, nil).prepare(context.Background(), "u1", "", ev)
	sub.start()

	docs.last().next(model.Fields{model.FieldStatus: "deactivated", model.FieldFirstName: "Ana"})
	require.Equal(t, 1, ev.deactivates)
	require.Empty(t, ev.profiles)
}

func TestNormalize_DisplayName(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		rec  model.ProfileRecord
		want string
	}{
		"full name":     {model.ProfileRecord{FirstName: " Ana ", LastName: "Cruz "}, "Ana Cruz"},
		"first only":    {model.ProfileRecord{FirstName: "Ana"}, "Ana"},
		"last only":     {model.ProfileRecord{LastName: "Cruz"}, "Cruz"},
		"stored email":  {model.ProfileRecord{FirstName: "  ", Email: "ana@school.edu"}, "ana@school.edu"},
		"session email": {model.ProfileRecord{}, "session@school.edu"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p := Normalize(tc.rec, "session@school.edu")
			if p.DisplayName != tc.want {
				t.Fatalf("display name = %q, want %q", p.DisplayName, tc.want)
			}
		})
	}
}
