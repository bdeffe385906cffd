package session

import "errors"

var (
	// ErrStartupLogin is returned by Run when the initial login fails after
	// the configured retry budget; no token ever existed, so the process
	// cannot serve authenticated traffic.
	ErrStartupLogin = errors.New("session.startup_login_failed")

	// ErrNoAuthenticator is returned when a Manager is constructed without
	// a login function.
	ErrNoAuthenticator = errors.New("session.no_authenticator")
)
