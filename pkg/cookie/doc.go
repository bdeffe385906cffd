// Package cookie signs and verifies HTTP cookie values with HMAC-SHA256 so
// the gateway can detect tampering with the session cookie.
//
// A signed value is "base64url(value)|base64url(hmac)". Verification tries
// every configured secret, newest first, so secrets can be rotated without
// invalidating cookies issued under the previous secret. Signature
// comparison is constant-time.
//
// The signing secret is loaded once at startup and never rotated at runtime;
// rotation happens across process restarts by listing the old secret after
// the new one.
package cookie
