// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ytmusic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
)

// StatusError is returned for non-retryable, non-404 responses.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ytmusic: %s: unexpected status %d", e.Path, e.StatusCode)
}

// HTTPClient implements [Client] against the JSON proxy.
//
// # Pacing
//
// Every attempt waits on a shared token bucket. 429 and 503 responses are
// retried with linear backoff, honouring Retry-After when present.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	retryBase  time.Duration
	logger     *slog.Logger
}

// Option customizes an [HTTPClient].
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = client }
}

// WithRetry sets the attempt count and the linear backoff base.
func WithRetry(attempts int, base time.Duration) Option {
	return func(c *HTTPClient) {
		if attempts > 0 {
			c.retries = attempts
		}
		c.retryBase = base
	}
}

// NewHTTPClient creates a client for the proxy at baseURL paced at rps requests per second.
func NewHTTPClient(baseURL string, rps float64, logger *slog.Logger, opts ...Option) *HTTPClient {
	if rps <= 0 {
		rps = constants.DefaultCatalogRPS
	}

	client := &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.DefaultCatalogTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		retries:    constants.DefaultRetryCount,
		retryBase:  constants.DefaultRetryBase,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *HTTPClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	var result SearchResult
	if err := c.get(ctx, "/search", url.Values{"q": {query}}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) BrowseArtist(ctx context.Context, id string) (*ArtistPage, error) {
	var page ArtistPage
	if err := c.get(ctx, "/browse/artist/"+url.PathEscape(id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) BrowseCollection(ctx context.Context, id string) (*CollectionPage, error) {
	var page CollectionPage
	if err := c.get(ctx, "/browse/collection/"+url.PathEscape(id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("ytmusic: %s: %w", path, err)
		}

		retryAfter, err := c.do(ctx, path, target, out)
		if err == nil {
			return nil
		}
		if retryAfter < 0 {
			return err
		}
		lastErr = err

		if attempt == c.retries-1 {
			break
		}

		delay := time.Duration(attempt+1) * c.retryBase
		if retryAfter > 0 {
			delay = retryAfter
		}

		c.logger.Warn("catalog_request_retry",
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String(constants.FieldError, err.Error()),
		)

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("ytmusic: %s: %w", path, err)
		}
	}

	return lastErr
}

// do performs one attempt. A negative retryAfter means the error is final;
// zero means retry with the default backoff.
func (c *HTTPClient) do(ctx context.Context, path, target string, out any) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return -1, fmt.Errorf("ytmusic: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.HeaderUserAgent, constants.AppName+"/"+constants.AppVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return -1, fmt.Errorf("ytmusic: %s: %w", path, ctx.Err())
		}
		return 0, fmt.Errorf("ytmusic: %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		_, _ = io.Copy(io.Discard, resp.Body)
		return parseRetryAfter(resp.Header.Get(constants.HeaderRetryAfter)), &StatusError{Path: path, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return -1, fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return -1, &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return -1, fmt.Errorf("ytmusic: %s: decode: %w", path, err)
	}
	return 0, nil
}

// parseRetryAfter supports the delta-seconds form only; anything else yields zero.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
