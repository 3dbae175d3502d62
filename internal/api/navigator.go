package api

// Navigator is how the client redirects the user when a response invalidates
// the session. Implementations are injected by the TUI (screen switch) or the
// CLI (stderr hint); the client never assumes a rendering layer.
type Navigator interface {
	// ToLogin is invoked after a 401.
	ToLogin()
	// ToHome is invoked after a 403.
	ToHome()
}

// NopNavigator ignores navigation requests. Useful in tests and for
// one-shot commands that exit right after the call anyway.
type NopNavigator struct{}

func (NopNavigator) ToLogin() {}
func (NopNavigator) ToHome()  {}
