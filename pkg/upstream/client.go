package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	loginPath         = "/api/login"
	verifyIngressPath = "/api/vault/ingress/verify"

	authorizationHeader = "Authorization"
)

// Config describes the platform API endpoint.
type Config struct {
	// BaseURL is the platform API address, e.g. "https://api.example.com".
	BaseURL string `env:"UPSTREAM_API_URL,required"`
	// RequestTimeout bounds every call so a slow upstream cannot stall the
	// refresh loop or hang an ingress request.
	RequestTimeout time.Duration `env:"UPSTREAM_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Ingress is the result of verifying a one-time ingress token: the session
// token for the visiting user and its absolute expiry.
type Ingress struct {
	SessionToken string
	ExpiresAt    time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

type verifyIngressRequest struct {
	Token string `json:"token"`
}

type verifyIngressResponse struct {
	AuthToken string `json:"auth_token"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

// Client calls the platform API. The zero value is not usable; construct
// with New.
type Client struct {
	baseURL string
	timeout time.Duration
	// client is reused across requests for connection pooling
	client *http.Client
}

// New creates a Client for the given endpoint.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %w", ErrRequestFailed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: base URL must be http or https", ErrRequestFailed)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// NewWithHTTPClient creates a Client with a caller-supplied http.Client,
// used by tests to point at an httptest server.
func NewWithHTTPClient(cfg Config, httpClient *http.Client) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.client = httpClient
	}
	return c, nil
}

// Login exchanges service credentials for a service-level bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.post(ctx, loginPath, "", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AuthToken == "" {
		return "", fmt.Errorf("%w: login returned no token", ErrUnexpectedStatus)
	}
	return resp.AuthToken, nil
}

// VerifyIngress exchanges a one-time ingress token for a user session token,
// authorized with the gateway's service-level token.
func (c *Client) VerifyIngress(ctx context.Context, serviceToken, ingressToken string) (Ingress, error) {
	if serviceToken == "" || ingressToken == "" {
		return Ingress{}, ErrEmptyToken
	}

	var resp verifyIngressResponse
	if err := c.post(ctx, verifyIngressPath, serviceToken, verifyIngressRequest{Token: ingressToken}, &resp); err != nil {
		return Ingress{}, err
	}

	return Ingress{
		SessionToken: resp.AuthToken,
		ExpiresAt:    time.Unix(resp.ExpiresAt, 0),
	}, nil
}

// Call performs a generic authenticated request against the platform API.
// Protected routes pass the caller's session token here, not the gateway's
// service token. The response body is decoded into out when out is non-nil.
func (c *Client) Call(ctx context.Context, token, method, path string, body, out any) error {
	if token == "" {
		return ErrEmptyToken
	}
	return c.do(ctx, method, path, token, body, out)
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, token, body, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %w", ErrRequestFailed, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(authorizationHeader, "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		// Read a bounded slice of the body for error context.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrRequestFailed, err)
	}
	return nil
}
