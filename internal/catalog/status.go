package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const statusCheckTimeout = 5 * time.Second

// ErrUpstreamUnavailable indicates the external service could not be reached
// in time or answered with an error status.
var ErrUpstreamUnavailable = errors.New("external service unavailable")

// StatusClient probes a third-party status endpoint. The timeout budget is
// fixed at 5 seconds; there are no retries.
type StatusClient struct {
	URL    string
	Client *http.Client
}

func NewStatusClient(url string) *StatusClient {
	return &StatusClient{
		URL:    url,
		Client: &http.Client{Timeout: statusCheckTimeout},
	}
}

// Check returns the upstream's HTTP status code, or ErrUpstreamUnavailable
// when the service is unreachable, times out, or responds with >= 400.
func (c *StatusClient) Check(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("%w: status=%d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	return resp.StatusCode, nil
}
