// Package source fetches and parses raw dataset payloads.
package source

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	maxRetries   = 3
	baseBackoff  = 500 * time.Millisecond
	maxBackoff   = 5 * time.Second
	jitterFactor = 0.5
)

// StatusError is a non-success HTTP status on the primary data source. It is
// fatal to the activation that issued the fetch.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Fetcher retrieves raw payloads with cache-bypass semantics. Local paths
// (no URL scheme) are read straight from disk, which also keeps tests and
// offline runs simple.
type Fetcher struct {
	http *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch returns the raw bytes of one resource. Transient statuses are
// retried with exponential backoff and jitter; anything else non-200 is a
// StatusError.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return os.ReadFile(location)
	}

	var lastErr error
	for attempt := range maxRetries {
		body, err := f.doRequest(ctx, location)
		if err == nil {
			return body, nil
		}
		lastErr = err

		se, ok := err.(*StatusError)
		if !ok || !retryable(se.StatusCode) {
			return nil, err
		}

		backoff := baseBackoff * time.Duration(1<<uint(attempt))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		jitter := time.Duration(float64(backoff) * jitterFactor * rand.Float64())
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

func (f *Fetcher) doRequest(ctx context.Context, location string) ([]byte, error) {
	// Cache-bypass: a throwaway query param plus no-cache headers, so a
	// stale CDN copy never masks a dataset update.
	sep := "?"
	if strings.Contains(location, "?") {
		sep = "&"
	}
	reqURL := location + sep + "ts=" + strconv.FormatInt(time.Now().UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}
