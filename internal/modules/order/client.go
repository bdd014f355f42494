// README: HTTP client for the backend order-creation endpoint.
package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// maxResponseBytes caps how much of a backend reply is read.
const maxResponseBytes = 1 << 20

type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient posts orders to endpoint. token, when set, is sent as a bearer token.
func NewClient(endpoint, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, token: token, http: httpClient}
}

// Create submits p. Any reply other than a 2xx with success=true is an error
// wrapping ErrSubmission.
func (c *Client) Create(ctx context.Context, p Payload) (Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Result{}, fmt.Errorf("%w: marshal payload: %v", ErrSubmission, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: build request: %v", ErrSubmission, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %w", ErrSubmission, err)
	}

	var cr createResponse
	decodeErr := json.Unmarshal(raw, &cr)

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{}, fmt.Errorf("%w: %w: status %d %s", ErrSubmission, ErrUnavailable, resp.StatusCode, cr.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: status %d %s", ErrSubmission, resp.StatusCode, cr.Error)
	}
	if decodeErr != nil {
		return Result{}, fmt.Errorf("%w: decode response: %v", ErrSubmission, decodeErr)
	}
	if !cr.Success {
		msg := cr.Error
		if msg == "" {
			msg = "backend reported failure"
		}
		return Result{}, fmt.Errorf("%w: %s", ErrSubmission, msg)
	}
	if cr.Data == nil {
		return Result{}, nil
	}
	return *cr.Data, nil
}

// IsRetryable reports whether err is a timeout or backend outage, as opposed to
// a rejected order.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrUnavailable) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
