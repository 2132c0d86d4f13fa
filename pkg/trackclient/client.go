// Package trackclient is the viewer-side library for live load tracking: a
// thin HTTP client for the tracking API plus a Session that keeps a local,
// monotonically-growing point list in sync through pushes and resyncs.
package trackclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Point mirrors the tracking API wire format.
type Point struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// before reports timeline order: ascending createdAt, id breaking ties.
func (p Point) before(q Point) bool {
	if p.CreatedAt.Equal(q.CreatedAt) {
		return p.ID < q.ID
	}
	return p.CreatedAt.Before(q.CreatedAt)
}

// LoadSummary identifies the tracked load.
type LoadSummary struct {
	ID         string `json:"id"`
	LoadNumber string `json:"loadNumber"`
	Status     string `json:"status"`
}

// Snapshot is one full read of a load's tracking state.
type Snapshot struct {
	Load     LoadSummary `json:"load"`
	Tracking []Point     `json:"tracking"`
}

// Client talks to the tracking API over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the API at baseURL, authenticating with the
// given bearer token. httpClient may be nil to use a default with a sane
// timeout; note the stream endpoint always uses an untimed request, since an
// SSE connection is expected to stay open.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

// FetchTracking performs the full fetch viewers seed from.
func (c *Client) FetchTracking(ctx context.Context, loadID string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/loads/%s/tracking", c.baseURL, loadID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch tracking: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tracking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tracking: unexpected status %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("fetch tracking: decode: %w", err)
	}
	return &snap, nil
}

// StreamTracking opens the live SSE feed for a load. The returned Stream
// delivers points until the connection drops or Close is called; history is
// not replayed.
func (c *Client) StreamTracking(ctx context.Context, loadID string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/loads/%s/tracking/stream", c.baseURL, loadID), nil)
	if err != nil {
		return nil, fmt.Errorf("stream tracking: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "text/event-stream")

	// An SSE connection is long-lived; the client's request timeout must not
	// apply. Cancellation comes from ctx.
	streamHTTP := &http.Client{Transport: c.http.Transport}

	resp, err := streamHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream tracking: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream tracking: unexpected status %d", resp.StatusCode)
	}

	return newStream(resp.Body), nil
}

var _ io.Closer = (*Stream)(nil)
