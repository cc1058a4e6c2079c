// Package fetch downloads raw instrument listings from exchange REST APIs.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// StatusError is returned when an exchange answers with a non-2xx status.
type StatusError struct {
	Market instrument.Market
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: %s returned status %d", e.Market, e.URL, e.Code)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Options configures a Client.
type Options struct {
	Timeout            time.Duration
	MaxRetries         int
	InsecureSkipVerify bool
	// InitialBackoff is the first retry delay; later ones grow exponentially.
	InitialBackoff time.Duration
	// BaseURL replaces every market's endpoint when set.
	BaseURL string
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		Timeout:        10 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
	}
}

// Client fetches listing documents with bounded retries.
type Client struct {
	http   *resty.Client
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Client {
	hc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.InsecureSkipVerify {
		hc.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	return &Client{http: hc, opts: opts, logger: logger}
}

// Fetch GETs path relative to the market's endpoint and returns the body.
// Transport failures, 429 and 5xx responses are retried up to MaxRetries
// times; other statuses fail immediately.
func (c *Client) Fetch(ctx context.Context, market instrument.Market, path string) ([]byte, error) {
	base := c.opts.BaseURL
	if base == "" {
		base = market.EndpointURL()
	}
	url := base + path

	op := func() ([]byte, error) {
		resp, err := c.http.R().SetContext(ctx).Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("fetch %s: %w", market, err)
		}
		if !resp.IsSuccess() {
			serr := &StatusError{Market: market, URL: url, Code: resp.StatusCode(), Body: resp.String()}
			if serr.Temporary() {
				return nil, serr
			}
			return nil, backoff.Permanent(serr)
		}
		return resp.Body(), nil
	}

	b := backoff.NewExponentialBackOff()
	if c.opts.InitialBackoff > 0 {
		b.InitialInterval = c.opts.InitialBackoff
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.opts.MaxRetries)+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("fetch failed, retrying", "market", market, "error", err, "backoff", next)
		}),
	)
}

// FetchListing fetches the market's instrument-listing document.
func (c *Client) FetchListing(ctx context.Context, market instrument.Market) ([]byte, error) {
	return c.Fetch(ctx, market, market.ExchangeInfoPath())
}
