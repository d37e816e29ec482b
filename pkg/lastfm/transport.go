package lastfm

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Base represents the root XML response from Last.fm API.
type Base struct {
	XMLName xml.Name `xml:"lfm"`
	Status  string   `xml:"status,attr"`
	Inner   []byte   `xml:",innerxml"`
}

// APIError represents an error response from the Last.fm API.
type APIError struct {
	Code    int    `xml:"code,attr"`
	Message string `xml:",chardata"`
}

const (
	apiStatusOK     = "ok"
	apiStatusFailed = "failed"
)

// callOptions selects how a method is sent.
type callOptions struct {
	post bool // send as a POST form instead of a GET query
	auth bool // include the session key
	sign bool // add api_sig
}

// get issues an unsigned, cacheable read.
func (c *Client) get(ctx context.Context, method string, params Params) ([]byte, error) {
	return c.call(ctx, method, params, callOptions{})
}

// post issues a signed write. auth adds the session key.
func (c *Client) post(ctx context.Context, method string, params Params, auth bool) ([]byte, error) {
	return c.call(ctx, method, params, callOptions{post: true, auth: auth, sign: true})
}

// call makes an HTTP request to the Last.fm API with retry logic.
//
// It handles:
// - Signature calculation for signed and authenticated requests
// - The minimum interval between requests
// - The response cache for unsigned reads
// - Response parsing (XML) and API errors
// - Retry with exponential backoff on temporary failures
func (c *Client) call(ctx context.Context, method string, params Params, opts callOptions) ([]byte, error) {
	reqParams := make(map[string]string, len(params)+4)
	for k, v := range params {
		reqParams[k] = v
	}
	reqParams["method"] = method
	reqParams["api_key"] = c.apiKey

	if opts.auth {
		if c.sessionKey == "" {
			return nil, ErrNoSessionKey
		}
		reqParams["sk"] = c.sessionKey
	}

	values := url.Values{}
	for k, v := range reqParams {
		values.Set(k, v)
	}
	if opts.sign || opts.auth {
		if c.apiSecret == "" {
			return nil, ErrNoAPISecret
		}
		values.Set("api_sig", calculateSignature(reqParams, c.apiSecret))
	}

	encoded := values.Encode()
	fullURL := c.baseURL
	if !opts.post {
		fullURL = c.baseURL + "?" + encoded
	}

	cacheable := c.cache != nil && !opts.post && !opts.sign && !opts.auth
	if cacheable {
		body, ok, err := c.cache.Get(ctx, fullURL)
		if err != nil {
			c.logDebugf("lastfm: cache read failed for %s: %v", method, err)
		} else if ok {
			inner, err := decodeResponse(body)
			if err == nil {
				c.logDebugf("lastfm: %s served from cache", method)
				return inner, nil
			}
			c.logDebugf("lastfm: discarding unreadable cache entry for %s: %v", method, err)
		}
	}

	var lastErr error
	backoff := 1 * time.Second

	for i := 0; i < c.maxRetries; i++ {
		c.logDebugf("lastfm: calling %s (attempt %d/%d)", method, i+1, c.maxRetries)

		if err := c.waitForRateLimit(ctx); err != nil {
			return nil, err
		}

		var req *http.Request
		var err error
		if opts.post {
			req, err = http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(encoded))
			if err == nil {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
		} else {
			req, err = http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("http request failed: %w", ctx.Err())
			}
			lastErr = err
			if shouldRetryNetworkError(err) && i < c.maxRetries-1 {
				c.logDebugf("lastfm: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, resp.Status)
			if i < c.maxRetries-1 {
				c.logDebugf("lastfm: server error, retrying: %v", lastErr)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, lastErr
		}

		inner, err := decodeResponse(body)
		if err != nil {
			var apiErr *Error
			if !errors.As(err, &apiErr) && resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			}
			if isRetryableError(err) && i < c.maxRetries-1 {
				c.logDebugf("lastfm: temporary error, retrying: %v", err)
				lastErr = err
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, err
		}

		// Non-200 responses without an <lfm> error body.
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		if cacheable {
			if err := c.cache.Set(ctx, fullURL, body, c.cacheTTL); err != nil {
				c.logDebugf("lastfm: cache write failed for %s: %v", method, err)
			}
		}

		c.logDebugf("lastfm: %s succeeded", method)
		return inner, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// decodeResponse unwraps the <lfm> envelope, returning the inner XML or the
// API error it carries.
func decodeResponse(body []byte) ([]byte, error) {
	var base Base
	if err := xml.Unmarshal(body, &base); err != nil {
		return nil, fmt.Errorf("failed to parse XML response: %w", err)
	}

	if base.Status == apiStatusFailed {
		var apiErr APIError
		if err := unmarshalInner(base.Inner, &struct {
			Err *APIError `xml:"error"`
		}{&apiErr}); err != nil {
			return nil, fmt.Errorf("failed to parse error response: %w", err)
		}
		return nil, &Error{
			Code:    apiErr.Code,
			Message: strings.TrimSpace(apiErr.Message),
		}
	}

	if base.Status != apiStatusOK {
		return nil, fmt.Errorf("unexpected response status %q", base.Status)
	}

	return base.Inner, nil
}

// unmarshalInner decodes inner XML returned by call into v. The inner
// document may hold several sibling elements, so it is wrapped in a root
// element first.
func unmarshalInner(data []byte, v any) error {
	wrapped := make([]byte, 0, len(data)+13)
	wrapped = append(wrapped, "<root>"...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, "</root>"...)
	return xml.Unmarshal(wrapped, v)
}

// waitForRateLimit blocks until MinRequestInterval has passed since the
// previous request.
func (c *Client) waitForRateLimit(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}

	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		c.logDebugf("lastfm: rate limit, waiting %s", wait)
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// nextBackoff calculates the next backoff duration with exponential increase.
// Maximum backoff is capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}
