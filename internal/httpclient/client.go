// Package httpclient wraps outbound HTTP requests with a per-attempt
// timeout, exponential-backoff retries on retryable statuses and transport
// failures, and tagged error classification. All verbs funnel through the
// same core so the policy is uniform across callers.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phihung0131/vocabulary-extension/internal/apperr"
)

const (
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 3
	// DefaultRetryDelay is the base backoff delay.
	DefaultRetryDelay = time.Second
)

// defaultRetryOnStatus lists the response statuses that trigger a retry.
var defaultRetryOnStatus = map[int]bool{
	http.StatusRequestTimeout:      true, // 408
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// Options controls the retry/timeout policy for a single logical call.
// The zero value means "use defaults".
type Options struct {
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// Retries is the number of retries after the first attempt.
	// Negative disables retrying entirely.
	Retries int
	// RetryDelay is the base backoff; attempt n sleeps RetryDelay * 2^n.
	RetryDelay time.Duration
	// RetryOnStatus overrides the set of retryable response statuses.
	RetryOnStatus map[int]bool
	// Header holds extra request headers.
	Header http.Header
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries == 0 {
		o.Retries = DefaultRetries
	} else if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.RetryOnStatus == nil {
		o.RetryOnStatus = defaultRetryOnStatus
	}
	return o
}

// Client issues retried HTTP requests. The zero value is not usable;
// construct with New.
type Client struct {
	httpClient *http.Client
	log        *zap.Logger

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Client over the given transport-owning *http.Client.
// The inner client must not set its own Timeout; attempts are bounded by
// per-request contexts instead so the policy stays in one place.
func New(httpClient *http.Client, log *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		log:        log,
		sleep:      sleepCtx,
	}
}

// redact strips the query string from a URL before it goes into errors or
// logs; query parameters may carry credentials.
func redact(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do performs the request with retry/backoff policy applied and returns the
// response body of the final successful attempt. Terminal failures are
// apperr values: KindAPI for a non-2xx status, KindTimeout for a deadline,
// KindNetwork for a transport failure.
func (c *Client) Do(ctx context.Context, method, url string, body []byte, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			delay := opts.RetryDelay * (1 << (attempt - 1))
			c.log.Debug("retrying request",
				zap.String("url", redact(url)),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, apperr.Timeout(redact(url), err)
			}
		}

		payload, retryable, err := c.attempt(ctx, method, url, body, opts)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

// attempt performs one bounded request. The second return value reports
// whether the failure may be retried.
func (c *Client) attempt(ctx context.Context, method, url string, body []byte, opts Options) ([]byte, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		// Malformed request, no point retrying.
		return nil, false, apperr.Network(redact(url), err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, vals := range opts.Header {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return nil, true, apperr.Timeout(redact(url), err)
		}
		if ctx.Err() != nil {
			// Caller cancelled; not retryable.
			return nil, false, apperr.Network(redact(url), ctx.Err())
		}
		return nil, true, apperr.Network(redact(url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, opts.RetryOnStatus[resp.StatusCode], apperr.API(redact(url), resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, apperr.Network(redact(url), err)
	}
	return payload, false, nil
}

// Get issues a retried GET request.
func (c *Client) Get(ctx context.Context, url string, opts Options) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, url, nil, opts)
}

// Post issues a retried POST request with a JSON body.
func (c *Client) Post(ctx context.Context, url string, body []byte, opts Options) ([]byte, error) {
	return c.Do(ctx, http.MethodPost, url, body, opts)
}

// Put issues a retried PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, url string, body []byte, opts Options) ([]byte, error) {
	return c.Do(ctx, http.MethodPut, url, body, opts)
}

// Delete issues a retried DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts Options) ([]byte, error) {
	return c.Do(ctx, http.MethodDelete, url, nil, opts)
}

// DoJSON performs a retried request, marshalling in and decoding the
// response into T. A decode failure of a successful response is terminal
// and is never retried.
func DoJSON[T any](ctx context.Context, c *Client, method, url string, in any, opts Options) (T, error) {
	var out T

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return out, fmt.Errorf("marshal request: %w", err)
		}
	}

	payload, err := c.Do(ctx, method, url, body, opts)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode response from %s: %w", redact(url), err)
	}
	return out, nil
}
