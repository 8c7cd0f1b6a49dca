package session

import "slices"

// Screen names a top-level destination.
type Screen string

const (
	ScreenLoading           Screen = "loading"
	ScreenGetStarted        Screen = "get-started"
	ScreenLogin             Screen = "login"
	ScreenCreateAccount     Screen = "create-account"
	ScreenProfileCompletion Screen = "profile-completion"
	ScreenHome              Screen = "home"
	ScreenSettings          Screen = "settings"
	ScreenTransactions      Screen = "transactions"
	ScreenSupport           Screen = "support"
)

var (
	entryScreens = []Screen{ScreenGetStarted, ScreenLogin, ScreenCreateAccount}
	homeScreens  = []Screen{ScreenHome, ScreenSettings, ScreenTransactions, ScreenSupport}
)

// Route is the routing decision for one View.
type Route struct {
	Screen Screen
	// VerificationReminder asks the login screen to show the verify-your-email prompt.
	VerificationReminder bool
	// Destinations lists the screens reachable by local navigation.
	Destinations []Screen
}

// RouteFor maps a view to a screen. Loading wins over everything else.
func RouteFor(v View) Route {
	if v.Loading {
		return Route{Screen: ScreenLoading}
	}
	switch v.State {
	case StateUnauthenticated:
		return Route{Screen: ScreenGetStarted, Destinations: entryScreens}
	case StateAwaitingVerification:
		return Route{Screen: ScreenLogin, VerificationReminder: true, Destinations: entryScreens}
	case StateIncompleteProfile:
		return Route{Screen: ScreenProfileCompletion}
	case StateComplete:
		return Route{Screen: ScreenHome, Destinations: homeScreens}
	default:
		return Route{Screen: ScreenLoading}
	}
}

// Navigate moves to a sibling screen. Unknown destinations leave the route unchanged.
func (r Route) Navigate(to Screen) Route {
	if slices.Contains(r.Destinations, to) {
		r.Screen = to
	}
	return r
}
