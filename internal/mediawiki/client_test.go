package mediawiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"esports-oracle/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gate := func() *ratelimit.Gate {
		return ratelimit.New(ratelimit.Config{BaseDelay: time.Millisecond, MaxRetries: 2, MaxBackoff: 10 * time.Millisecond})
	}
	return NewClient(Options{APIURL: srv.URL, RenderGate: gate(), SearchGate: gate()}, zerolog.Nop())
}

func TestGetPageHTML(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "parse", r.URL.Query().Get("action"))
		assert.Equal(t, "Match_History", r.URL.Query().Get("page"))
		w.Write([]byte(`{"parse":{"title":"Match_History","text":{"*":"<div>content</div>"}}}`))
	})

	html, err := c.GetPageHTML(context.Background(), "Match_History")
	require.NoError(t, err)
	assert.Equal(t, "<div>content</div>", html)
}

func TestGetPageHTMLMissingPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`))
	})

	_, err := c.GetPageHTML(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrPageMissing)
}

func TestGetPageHTMLRateLimited(t *testing.T) {
	t.Run("api reported", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":{"code":"ratelimited","info":"slow down"}}`))
		})
		_, err := c.GetPageHTML(context.Background(), "Busy")
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("http 429", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := c.GetPageHTML(context.Background(), "Busy")
		assert.ErrorIs(t, err, ErrRateLimited)
	})
}

func TestGetPageHTMLMalformedPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	})

	_, err := c.GetPageHTML(context.Background(), "Broken")
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opensearch", r.URL.Query().Get("action"))
		w.Write([]byte(`["sentinels",["Sentinels","Sentinels/Results"],["",""],["",""]]`))
	})

	titles, err := c.Search(context.Background(), "sentinels", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sentinels", "Sentinels/Results"}, titles)
}
