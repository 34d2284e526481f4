package client

// NavigationMode says how the browser moves to a target.
type NavigationMode int

const (
	// InApp is a client-side route transition.
	InApp NavigationMode = iota
	// FullPage leaves the app. Hosted payment and provider flows require it.
	FullPage
)

func (m NavigationMode) String() string {
	if m == FullPage {
		return "full-page"
	}
	return "in-app"
}

// Navigator moves the browser. The web shell implements it over the history
// API or window.location; tests record the calls.
type Navigator interface {
	Navigate(target string, mode NavigationMode)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string, mode NavigationMode)

// Navigate calls f.
func (f NavigatorFunc) Navigate(target string, mode NavigationMode) {
	f(target, mode)
}
