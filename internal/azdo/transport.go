package azdo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultMaxAttempts bounds the retry loop for rate-limited and 5xx responses.
	DefaultMaxAttempts = 4
	// DefaultBaseDelay is the first backoff delay; it doubles per attempt.
	DefaultBaseDelay = 500 * time.Millisecond
	// DefaultRequestTimeout is the per-attempt HTTP timeout, separate from the
	// backoff delays between attempts.
	DefaultRequestTimeout = 30 * time.Second
)

// Transport performs authenticated HTTP calls against the tracker and applies
// the retry/backoff policy: 429 honors a Retry-After hint (seconds) when
// present, otherwise bounded exponential backoff; 5xx gets the same backoff;
// any other 4xx is surfaced immediately since it indicates a caller or data
// error, not a transient condition. Every retry re-sends the identical body.
type Transport struct {
	Credentials Credentials
	HTTPClient  *http.Client
	MaxAttempts int
	BaseDelay   time.Duration
}

// NewTransport creates a transport with the default timeout and retry bounds.
func NewTransport(creds Credentials) *Transport {
	return &Transport{
		Credentials: creds,
		HTTPClient:  &http.Client{Timeout: DefaultRequestTimeout},
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
	}
}

func (t *Transport) maxAttempts() int {
	if t.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return t.MaxAttempts
}

func (t *Transport) baseDelay() time.Duration {
	if t.BaseDelay <= 0 {
		return DefaultBaseDelay
	}
	return t.BaseDelay
}

// Send performs one logical request under the full retry budget and returns
// the raw response body. Non-2xx after retries are exhausted surfaces as
// *TransportError.
func (t *Transport) Send(ctx context.Context, method, rawURL, contentType string, body []byte) ([]byte, error) {
	return t.send(ctx, method, rawURL, contentType, body, t.maxAttempts())
}

// SendLimited is Send with a caller-supplied attempt budget. Creates go
// through this with a budget of 2: they carry no idempotency key, so a retry
// after an ambiguous failure can produce a duplicate item.
func (t *Transport) SendLimited(ctx context.Context, method, rawURL, contentType string, body []byte, maxAttempts int) ([]byte, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return t.send(ctx, method, rawURL, contentType, body, maxAttempts)
}

func (t *Transport) send(ctx context.Context, method, rawURL, contentType string, body []byte, maxAttempts int) ([]byte, error) {
	// Capture the header once so an interleaved credential refresh cannot
	// change auth mid-call.
	authHeader := t.Credentials.AuthHeader()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRequestCreate, err)
		}
		req.Header.Set("Authorization", authHeader)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		log.Debug().Str("method", method).Str("url", rawURL).Int("attempt", attempt).Msg("Sending Azure DevOps request")
		resp, err := t.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				// A cancelled call must not be retried.
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %w", ErrRequestExecute, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrRequestExecute, readErr)
		}
		log.Debug().Int("status_code", resp.StatusCode).Int("attempt", attempt).Msg("Received Azure DevOps response")

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		transportErr := &TransportError{Status: resp.StatusCode, Body: string(respBody)}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable {
			return nil, transportErr
		}
		lastErr = transportErr
		if attempt == maxAttempts {
			break
		}

		delay := t.backoffDelay(attempt)
		if resp.StatusCode == http.StatusTooManyRequests {
			if hinted, ok := retryAfterDelay(resp.Header); ok {
				delay = hinted
			}
		}
		log.Warn().Int("status_code", resp.StatusCode).Dur("delay", delay).Int("attempt", attempt).Msg("Transient tracker failure, backing off")
		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// backoffDelay doubles the base delay per completed attempt.
func (t *Transport) backoffDelay(attempt int) time.Duration {
	return t.baseDelay() << (attempt - 1)
}

// retryAfterDelay reads a Retry-After hint in seconds, when present and sane.
func retryAfterDelay(h http.Header) (time.Duration, bool) {
	raw := h.Get("Retry-After")
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
