package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"esports-oracle/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGate(retries int) *ratelimit.Gate {
	return ratelimit.New(ratelimit.Config{
		BaseDelay:  time.Millisecond,
		MaxRetries: retries,
		MaxBackoff: 10 * time.Millisecond,
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Options{Source: "test", BaseURL: srv.URL, Gate: testGate(retries)}, zerolog.Nop())
	return c, srv
}

func TestGetReturnsBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		assert.NotEmpty(t, r.Header.Get("Referer"))
		w.Write([]byte("<html>ok</html>"))
	}, 3)

	body, err := c.Get(context.Background(), "/matches")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
}

func TestGetRetriesAfterRateLimitResponse(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("recovered"))
	}, 3)

	body, err := c.Get(context.Background(), "/matches")
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}, 3)

	_, err := c.Get(context.Background(), "/matches")
	require.Error(t, err)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.True(t, IsBlocked(err), "403 exhaustion should read as blocked")
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetServerErrorIsNotBlocked(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 2)

	_, err := c.Get(context.Background(), "/matches")
	require.Error(t, err)
	assert.False(t, IsBlocked(err))
}

func TestGetStopsOnContextCancel(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 5)
	// Force a long delay so cancellation wins the race.
	c.gate = ratelimit.New(ratelimit.Config{BaseDelay: 10 * time.Second, MaxRetries: 5, MaxBackoff: time.Minute})
	require.NoError(t, c.gate.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Get(ctx, "/matches")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
