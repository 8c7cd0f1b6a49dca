package session

import (
	"testing"

	"github.com/and161185/barkcard/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRouteFor(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		view View
		want Screen
	}{
		{"initial", View{State: StateUnknown, Loading: true}, ScreenLoading},
		{"unauthenticated", View{State: StateUnauthenticated}, ScreenGetStarted},
		{"awaiting verification", View{State: StateAwaitingVerification}, ScreenLogin},
		{"awaiting profile", View{State: StateAwaitingProfile}, ScreenLoading},
		{"incomplete", View{State: StateIncompleteProfile}, ScreenProfileCompletion},
		{"complete", View{State: StateComplete, Profile: model.Profile{ProfileRecord: model.ProfileRecord{ProfileComplete: true}}}, ScreenHome},
		{"loading wins", View{State: StateComplete, Loading: true}, ScreenLoading},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, RouteFor(tc.view).Screen)
		})
	}
}

func TestRoute_Navigate(t *testing.T) {
	t.Parallel()

	home := RouteFor(View{State: StateComplete})
	require.Equal(t, ScreenTransactions, home.Navigate(ScreenTransactions).Screen)
	require.Equal(t, ScreenHome, home.Navigate(ScreenLogin).Screen)
	require.Equal(t, ScreenHome, home.Screen)

	entry := RouteFor(View{State: StateUnauthenticated})
	require.Equal(t, ScreenCreateAccount, entry.Navigate(ScreenCreateAccount).Screen)
	require.Equal(t, ScreenGetStarted, entry.Navigate(ScreenHome).Screen)

	profile := RouteFor(View{State: StateIncompleteProfile})
	require.Equal(t, ScreenProfileCompletion, profile.Navigate(ScreenHome).Screen)
}

func TestState_String(t *testing.T) {
	t.Parallel()
	require.Equal(t, "authenticated-complete", StateComplete.String())
	require.Equal(t, "awaiting-verification", StateAwaitingVerification.String())
	require.Equal(t, "invalid", State(42).String())
	require.True(t, StateAwaitingProfile.Authenticated())
	require.False(t, StateAwaitingVerification.Authenticated())
}
