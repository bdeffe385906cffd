// Package httpserver wraps net/http.Server with graceful shutdown wired to
// OS signals and context cancellation, so in-flight requests complete while
// background loops exit promptly.
package httpserver
