package azdo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransport(creds Credentials) *Transport {
	t := NewTransport(creds)
	t.BaseDelay = time.Millisecond
	return t
}

func testCreds() Credentials {
	return Credentials{OrganizationURL: "https://dev.azure.com/acme", Project: "Web", PAT: "pat"}
}

func TestTransportSendSuccess(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := testTransport(testCreds())
	body, err := tr.Send(context.Background(), http.MethodPost, server.URL, contentTypeJSON, []byte(`{}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, testCreds().AuthHeader(), gotAuth)
	assert.Equal(t, contentTypeJSON, gotContentType)
}

func TestTransportRetryBoundOnRateLimit(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	tr := testTransport(testCreds())
	tr.MaxAttempts = 3
	_, err := tr.Send(context.Background(), http.MethodGet, server.URL, "", nil)

	require.Error(t, err)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusTooManyRequests, transportErr.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestTransportRateLimitThenSuccess(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	tr := testTransport(testCreds())
	body, err := tr.Send(context.Background(), http.MethodGet, server.URL, "", nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts), "exactly one retry expected")
}

func TestTransportHonorsRetryAfterHint(t *testing.T) {
	var attempts int32
	start := time.Now()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr := testTransport(testCreds())
	_, err := tr.Send(context.Background(), http.MethodGet, server.URL, "", nil)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), time.Second, "Retry-After seconds should be honored over the backoff schedule")
}

func TestTransportRetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr := testTransport(testCreds())
	_, err := tr.Send(context.Background(), http.MethodGet, server.URL, "", nil)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestTransportDoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"field TitleX does not exist"}`))
	}))
	defer server.Close()

	tr := testTransport(testCreds())
	_, err := tr.Send(context.Background(), http.MethodGet, server.URL, "", nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadRequest, transportErr.Status)
	assert.Contains(t, transportErr.Body, "TitleX")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "4xx other than 429 must not be retried")
}

func TestTransportCancelledCallNotRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	tr := testTransport(testCreds())
	tr.BaseDelay = time.Hour // the cancel must interrupt the backoff sleep
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := tr.Send(ctx, http.MethodGet, server.URL, "", nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestTransportSendLimitedCapsAttempts(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := testTransport(testCreds())
	_, err := tr.SendLimited(context.Background(), http.MethodPost, server.URL, contentTypePatch, []byte(`[]`), 2)

	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestTransportResendsIdenticalBody(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		bodies = append(bodies, string(buf))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr := testTransport(testCreds())
	_, err := tr.Send(context.Background(), http.MethodPost, server.URL, contentTypeJSON, []byte(`{"query":"q"}`))

	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
}
