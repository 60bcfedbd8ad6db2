// Package fetch performs rate-gated HTML fetches against a single
// source, rotating request fingerprints to stay under anti-bot radar.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"esports-oracle/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Client struct {
	source  string
	baseURL string
	gate    *ratelimit.Gate
	http    *fasthttp.Client
	logger  zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type Options struct {
	Source  string
	BaseURL string
	Gate    *ratelimit.Gate

	// Development-only concession for sources behind TLS interception.
	InsecureSkipTLSVerify bool
}

func NewClient(opts Options, logger zerolog.Logger) *Client {
	httpClient := &fasthttp.Client{
		MaxConnsPerHost:     4,
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        10 * time.Second,
		MaxIdleConnDuration: 1 * time.Minute,
	}
	if opts.InsecureSkipTLSVerify {
		httpClient.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		source:  opts.Source,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		gate:    opts.Gate,
		http:    httpClient,
		logger:  logger.With().Str("source", opts.Source).Logger(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Client) Source() string { return c.source }

// Get fetches one page through the rate gate, retrying within the
// gate's budget. 429/403 register as rate-limit failures (backoff on
// the next attempt); other errors register as plain failures. Raw
// transport errors never escape — callers get either a body or a typed
// exhausted error.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path
	attempts := 0
	var lastErr error

	for !c.gate.Exhausted() {
		if err := c.gate.Wait(ctx); err != nil {
			return nil, err
		}
		attempts++

		body, err := c.doRequest(ctx, url)
		if err == nil {
			c.gate.Success()
			return body, nil
		}
		lastErr = err
		c.gate.Failure()

		c.logger.Warn().
			Err(err).
			Str("path", path).
			Int("attempt", attempts).
			Dur("next_delay", c.gate.Delay()).
			Msg("fetch attempt failed")
	}

	c.gate.Reset() // the budget covers this logical fetch only, not the next one
	err := &ExhaustedError{Source: c.source, Attempts: attempts, LastErr: lastErr}
	c.logger.Error().Err(err).Str("path", path).Msg("fetch abandoned")
	return nil, err
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	c.applyFingerprint(req)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusOK:
		body := make([]byte, len(resp.Body()))
		copy(body, resp.Body())
		return body, nil
	case status == fasthttp.StatusTooManyRequests || status == fasthttp.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", ErrRateLimited, status)
	default:
		return nil, fmt.Errorf("unexpected status %d", status)
	}
}

func (c *Client) applyFingerprint(req *fasthttp.Request) {
	c.mu.Lock()
	fp := fingerprints[c.rng.Intn(len(fingerprints))]
	referer := c.baseURL + "/"
	c.mu.Unlock()

	req.Header.Set("User-Agent", fp.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", fp.AcceptLanguage)
	req.Header.Set("Referer", referer)
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	if fp.SecChUA != "" {
		req.Header.Set("Sec-CH-UA", fp.SecChUA)
		req.Header.Set("Sec-CH-UA-Mobile", fp.SecChUAMobile)
		req.Header.Set("Sec-CH-UA-Platform", fp.SecChPlatform)
	}
}
