package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single check regardless of the polling interval.
const DefaultTimeout = 10 * time.Second

const (
	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 60 * time.Second
	maxDrainBytes       = 64 << 10
)

type HTTPChecker struct {
	Client *http.Client
}

// NewHTTPChecker returns a checker whose requests time out after timeout.
// A non-positive timeout selects DefaultTimeout.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
			},
		},
	}
}

// Check issues a GET against target. Only a 2xx response is a success.
func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return CheckResult{Success: false, Message: err.Error()}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return CheckResult{Success: false, Message: err.Error()}
	}
	defer resp.Body.Close()
	// drain a little so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	return CheckResult{
		Success:    success,
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
	}
}

// Close releases idle connections held by the checker's transport.
func (h *HTTPChecker) Close() {
	if t, ok := h.Client.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}
