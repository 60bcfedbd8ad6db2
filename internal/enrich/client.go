// Package enrich is the HTTP client for the external text-generation
// prediction service. It implements rating.Enricher; every failure
// mode collapses to an error the engine treats as "service
// unavailable".
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"esports-oracle/internal/constants"
	"esports-oracle/internal/rating"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

var ErrNotConfigured = errors.New("enrich: no endpoint configured")

type Client struct {
	url    string
	apiKey string
	http   *fasthttp.Client
	logger zerolog.Logger
}

func NewClient(url, apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		http: &fasthttp.Client{
			ReadTimeout:  constants.EnrichmentTimeout,
			WriteTimeout: constants.EnrichmentTimeout,
		},
		logger: logger.With().Str("component", "enrich").Logger(),
	}
}

func (c *Client) Enrich(ctx context.Context, req rating.EnrichmentRequest) (*rating.EnrichmentResponse, error) {
	if c.url == "" || c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq := fasthttp.AcquireRequest()
	httpResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(httpReq)
	defer fasthttp.ReleaseResponse(httpResp)

	httpReq.SetRequestURI(c.url)
	httpReq.Header.SetMethod(fasthttp.MethodPost)
	httpReq.Header.SetContentType("application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.SetBody(payload)

	deadline := time.Now().Add(constants.EnrichmentTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(httpReq, httpResp, deadline); err != nil {
		return nil, fmt.Errorf("enrich: request failed: %w", err)
	}
	if httpResp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("enrich: unexpected status %d", httpResp.StatusCode())
	}

	var resp rating.EnrichmentResponse
	if err := json.Unmarshal(httpResp.Body(), &resp); err != nil {
		return nil, fmt.Errorf("enrich: malformed reply: %w", err)
	}
	// Schema violations are "service unavailable", not data.
	if resp.Team1WinPct < 0 || resp.Team1WinPct > 100 {
		return nil, fmt.Errorf("enrich: probability %v out of range", resp.Team1WinPct)
	}
	return &resp, nil
}

var _ rating.Enricher = (*Client)(nil)
