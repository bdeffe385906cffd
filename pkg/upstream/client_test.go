package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/enclavekit/pkg/upstream"
)

func newClient(t *testing.T, srv *httptest.Server) *upstream.Client {
	t.Helper()
	c, err := upstream.NewWithHTTPClient(upstream.Config{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
	}, srv.Client())
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	_, err := upstream.New(upstream.Config{BaseURL: "ftp://example.com"})
	assert.ErrorIs(t, err, upstream.ErrRequestFailed)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "svc-user", body["username"])
		require.Equal(t, "svc-pass", body["password"])

		_ = json.NewEncoder(w).Encode(map[string]string{"auth_token": "service-token-1"})
	}))
	defer srv.Close()

	token, err := newClient(t, srv).Login(context.Background(), "svc-user", "svc-pass")
	require.NoError(t, err)
	assert.Equal(t, "service-token-1", token)
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newClient(t, srv).Login(context.Background(), "svc-user", "wrong")
	assert.ErrorIs(t, err, upstream.ErrUnauthorized)
}

func TestVerifyIngress(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(time.Hour).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/vault/ingress/verify", r.URL.Path)
		require.Equal(t, "Bearer service-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "one-time-token", body["token"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"auth_token": "user-session-token",
			"expires_at": expiry,
		})
	}))
	defer srv.Close()

	ingress, err := newClient(t, srv).VerifyIngress(context.Background(), "service-token", "one-time-token")
	require.NoError(t, err)
	assert.Equal(t, "user-session-token", ingress.SessionToken)
	assert.Equal(t, expiry, ingress.ExpiresAt.Unix())
}

func TestVerifyIngress_EmptyTokens(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected for empty tokens")
	}))
	defer srv.Close()

	c := newClient(t, srv)

	_, err := c.VerifyIngress(context.Background(), "", "some-token")
	assert.ErrorIs(t, err, upstream.ErrEmptyToken)

	_, err = c.VerifyIngress(context.Background(), "service-token", "")
	assert.ErrorIs(t, err, upstream.ErrEmptyToken)
}

func TestVerifyIngress_UpstreamRejects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ingress token expired", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := newClient(t, srv).VerifyIngress(context.Background(), "service-token", "bad")
	assert.ErrorIs(t, err, upstream.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "ingress token expired")
}

func TestCall(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		require.Equal(t, "/api/orders/filter", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"count": 3})
	}))
	defer srv.Close()

	var out struct {
		Count int `json:"count"`
	}
	err := newClient(t, srv).Call(context.Background(), "user-token", http.MethodPost, "/api/orders/filter", map[string]any{"is_active": true}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
}

func TestCall_EmptyToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected for an empty token")
	}))
	defer srv.Close()

	err := newClient(t, srv).Call(context.Background(), "", http.MethodGet, "/api/anything", nil, nil)
	assert.ErrorIs(t, err, upstream.ErrEmptyToken)
}

func TestDo_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := upstream.NewWithHTTPClient(upstream.Config{
		BaseURL:        srv.URL,
		RequestTimeout: 50 * time.Millisecond,
	}, srv.Client())
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "u", "p")
	assert.ErrorIs(t, err, upstream.ErrRequestFailed)
}
