package source

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	fetchTries   = 3
	fetchBackoff = 1.6
	maxBodyBytes = 15 * 1024 * 1024
)

// FetchDocument retrieves an article document for text extraction. Same
// retry behavior as feed and page fetches.
func FetchDocument(ctx context.Context, client *http.Client, rawURL, userAgent string) ([]byte, string, error) {
	return fetchURL(ctx, client, rawURL, userAgent, "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
}

// fetchURL retrieves a URL with bounded retries and exponential backoff.
// Returns the body and the response Content-Type.
func fetchURL(ctx context.Context, client *http.Client, rawURL, userAgent, accept string) ([]byte, string, error) {
	var lastErr error

	for attempt := 0; attempt < fetchTries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(fetchBackoff, float64(attempt-1)) * float64(time.Second))
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(delay):
			}
		}

		data, contentType, err := fetchOnce(ctx, client, rawURL, userAgent, accept)
		if err == nil {
			return data, contentType, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
	}

	return nil, "", lastErr
}

func fetchOnce(ctx context.Context, client *http.Client, rawURL, userAgent, accept string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty response body")
	}

	return data, resp.Header.Get("Content-Type"), nil
}
