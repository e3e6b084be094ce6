package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"taskman-api/taskman/config"
)

// CredentialTier selects which API key a request is signed with. The
// standard tier is subject to the database's row-level security; the
// service tier bypasses it.
type CredentialTier int

const (
	TierStandard CredentialTier = iota
	TierService
)

// ErrTimeout marks requests that exceeded the per-call deadline.
var ErrTimeout = errors.New("database request timed out")

// StatusError is returned for non-2xx responses from the database API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("database returned status %d: %s", e.Code, e.Body)
}

// Client issues one-shot requests against the remote database's REST
// interface. There are no retries and no pooling beyond what net/http
// provides; every call carries a bounded deadline.
type Client struct {
	baseURL    string
	key        string
	serviceKey string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.SupabaseURL, "/") + "/rest/v1",
		key:        cfg.SupabaseKey,
		serviceKey: cfg.SupabaseServiceKey,
		timeout:    time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		httpClient: &http.Client{},
	}
}

func (c *Client) apiKey(tier CredentialTier) string {
	if tier == TierService {
		return c.serviceKey
	}
	return c.key
}

// Do sends a single request to the given endpoint (path plus query string,
// relative to /rest/v1) and returns the raw response body. A non-2xx
// response becomes a StatusError; a missed deadline becomes ErrTimeout.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, tier CredentialTier) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	key := c.apiKey(tier)
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, method, endpoint)
		}
		return nil, fmt.Errorf("database request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
