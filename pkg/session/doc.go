// Package session owns the gateway's service-level auth token.
//
// A Manager logs into the platform API at startup and again on a fixed
// interval for the lifetime of the process. Request handlers read the
// current token concurrently under a shared lock while the refresh loop is
// the only writer, so a read during a refresh observes either the previous
// or the new token, never a partial value.
//
// The token is never persisted; a restart forces an immediate re-login.
package session
