// Package upstream is a thin client for the three platform API calls the
// gateway depends on: credential login, ingress-token verification, and
// generic authenticated calls made on behalf of an end user.
//
// The wire format is JSON over HTTP. Every request carries a bounded
// timeout so a slow upstream cannot stall the session refresh loop or hang
// an ingress exchange.
package upstream
