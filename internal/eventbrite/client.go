package eventbrite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/retry"
)

const DefaultBaseURL = "https://www.eventbriteapi.com/v3"

// OnlineChecker reports whether the machine can reach the network at all.
type OnlineChecker interface {
	Online(ctx context.Context) bool
}

// DNSChecker considers the network up when Host resolves.
type DNSChecker struct {
	Host    string
	Timeout time.Duration
}

func (d DNSChecker) Online(ctx context.Context) bool {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := net.DefaultResolver.LookupHost(ctx, d.Host)
	return err == nil
}

type alwaysOnline struct{}

func (alwaysOnline) Online(context.Context) bool { return true }

// AlwaysOnline never reports the network as down.
var AlwaysOnline OnlineChecker = alwaysOnline{}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	policy  retry.Policy
	online  OnlineChecker
	logger  *slog.Logger
	observe func(status int)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

func WithOnlineChecker(o OnlineChecker) Option {
	return func(c *Client) { c.online = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver registers a callback invoked with the status of every HTTP attempt,
// 0 for transport failures.
func WithObserver(fn func(status int)) Option {
	return func(c *Client) { c.observe = fn }
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		policy:  retry.Default(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.online == nil {
		host := "www.eventbriteapi.com"
		if u, err := url.Parse(c.baseURL); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
		c.online = DNSChecker{Host: host}
	}
	return c
}

// Get issues an authenticated GET for path and decodes the JSON body into out.
// A 404 is not an error: out is left untouched, so callers see an empty result.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.get(ctx, path, query, out)
	return err
}

// get is Get that also reports whether the resource existed.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return retry.Do(ctx, c.policy, func(ctx context.Context) (bool, error) {
		return c.do(ctx, u, out)
	})
}

func (c *Client) do(ctx context.Context, u string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, apperr.Wrap(apperr.KindFetch, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(0)
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if !c.online.Online(ctx) {
			return false, &apperr.Error{
				Kind:    apperr.KindConnectivity,
				Message: "No internet connection",
				Detail:  "Please check your internet connection and try again",
				Err:     err,
			}
		}
		return false, &apperr.Error{
			Kind:    apperr.KindUnavailable,
			Message: "Network error or service unavailable",
			Err:     err,
		}
	}
	defer resp.Body.Close()
	c.record(resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return false, &apperr.Error{Kind: apperr.KindAuth, Status: resp.StatusCode, Message: "Invalid or expired API token"}
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, &apperr.Error{
			Kind:    apperr.KindRateLimit,
			Status:  resp.StatusCode,
			Message: "Rate limit exceeded",
			Detail:  "Please try again later",
		}
	case resp.StatusCode >= 500:
		return false, &apperr.Error{
			Kind:    apperr.KindUnavailable,
			Status:  resp.StatusCode,
			Message: "Eventbrite service is temporarily unavailable",
			Detail:  "Please try again later",
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return false, &apperr.Error{
			Kind:    apperr.KindFetch,
			Status:  resp.StatusCode,
			Message: "Failed to fetch events",
			Detail:  errorDescription(body),
		}
	}

	if out == nil {
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return true, apperr.Wrap(apperr.KindParse, "decode response", err)
	}
	return true, nil
}

func (c *Client) record(status int) {
	if c.observe != nil {
		c.observe(status)
	}
}

func errorDescription(body []byte) string {
	var payload struct {
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.ErrorDescription != "" {
		return payload.ErrorDescription
	}
	return strings.TrimSpace(string(body))
}
