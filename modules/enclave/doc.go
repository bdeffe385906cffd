// Package enclave assembles the gateway's HTTP surface for one embedded
// widget instance: health checks, static assets, the SPA shell, the ingress
// token exchange, and cookie-gated protected routes, all mounted under the
// enclave URL prefix.
package enclave
