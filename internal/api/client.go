// Package api is the typed HTTP client for the todo backend.
//
// The backend is user-supplied and only assumed to satisfy the REST
// contract: GET / (optional done filter), POST /, PUT /{title}?done=<bool>,
// DELETE /{title}. Titles are the resource key and are path-escaped on the
// wire. Every call takes a context and returns an explicit error; HTTP-level
// failures never panic and are not retried here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/idilsaglam/todoc/internal/model"
)

// Error is the uniform failure value for every operation. Transport
// failures and non-2xx statuses are not distinguished by the UI, but the
// log line keeps enough detail to debug against an arbitrary backend.
type Error struct {
	Op     string // "list", "create", "toggle", "delete"
	URL    string
	Status int   // 0 when the request never got a response
	Err    error // underlying transport error, if any
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: backend returned %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client talks to one backend base URL.
type Client struct {
	base   string // normalized, no trailing slash
	http   *http.Client
	token  string
	writes *rate.Limiter
	log    *log.Logger
}

// Option tunes a Client.
type Option func(*Client)

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient swaps the underlying transport (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger routes request logging somewhere other than the default
// discard logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithWriteLimit overrides the mutation rate limit.
func WithWriteLimit(l *rate.Limiter) Option {
	return func(c *Client) { c.writes = l }
}

// New builds a client for the given base URL. Only presence and
// parseability of the URL are checked; the backend itself is trusted to
// exist, per the configuration contract.
func New(base string, opts ...Option) (*Client, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, fmt.Errorf("empty backend URL")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse backend URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend URL must be absolute: %q", base)
	}

	c := &Client{
		base: strings.TrimSuffix(u.String(), "/"),
		http: newHTTPClient(),
		// Mutations come from single keypresses; 10rps with a small burst
		// keeps an autorepeating key from flooding the backend.
		writes: rate.NewLimiter(rate.Limit(10), 3),
		log:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newHTTPClient mirrors what we actually need: short dial timeout so a
// wrong backend URL fails fast, connection reuse for the refetch loop.
func newHTTPClient() *http.Client {
	d := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         d.DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// BaseURL reports the normalized backend base URL.
func (c *Client) BaseURL() string { return c.base }

// itemURL builds the path-addressed URL for a single title.
func (c *Client) itemURL(title string) string {
	return c.base + "/" + url.PathEscape(title)
}

// List fetches the collection, filtered server-side. The payload is
// validated against the response schema before it is decoded, so a
// misbehaving backend surfaces as one list error instead of half-decoded
// garbage.
func (c *Client) List(ctx context.Context, filter model.DoneFilter) ([]model.Item, error) {
	u := c.base + "/"
	if v, ok := filter.Param(); ok {
		u += "?done=" + v
	}
	body, apiErr := c.do(ctx, "list", http.MethodGet, u, nil)
	if apiErr != nil {
		return nil, apiErr
	}
	items, err := decodeList(body)
	if err != nil {
		return nil, &Error{Op: "list", URL: u, Err: err}
	}
	c.log.Debug("listed", "filter", filter.String(), "count", len(items))
	return items, nil
}

// Create adds a new item. The caller validates that the title is
// non-empty; title collisions are the backend's call.
func (c *Client) Create(ctx context.Context, item model.Item) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	if err := c.waitWrite(ctx, "create", c.base+"/"); err != nil {
		return err
	}
	_, apiErr := c.do(ctx, "create", http.MethodPost, c.base+"/", b)
	if apiErr != nil {
		return apiErr
	}
	c.log.Debug("created", "title", item.Title)
	return nil
}

// SetDone sets the done flag of the item with the given title. What the
// backend does for an unknown title is its own business; the status code
// it answers with is surfaced as-is.
func (c *Client) SetDone(ctx context.Context, title string, done bool) error {
	u := c.itemURL(title) + "?done=" + strconv.FormatBool(done)
	if err := c.waitWrite(ctx, "toggle", u); err != nil {
		return err
	}
	_, apiErr := c.do(ctx, "toggle", http.MethodPut, u, nil)
	if apiErr != nil {
		return apiErr
	}
	c.log.Debug("toggled", "title", title, "done", done)
	return nil
}

// Delete removes the item with the given title. Idempotency of repeated
// deletes is backend-defined.
func (c *Client) Delete(ctx context.Context, title string) error {
	u := c.itemURL(title)
	if err := c.waitWrite(ctx, "delete", u); err != nil {
		return err
	}
	_, apiErr := c.do(ctx, "delete", http.MethodDelete, u, nil)
	if apiErr != nil {
		return apiErr
	}
	c.log.Debug("deleted", "title", title)
	return nil
}

func (c *Client) waitWrite(ctx context.Context, op, u string) error {
	if err := c.writes.Wait(ctx); err != nil {
		return &Error{Op: op, URL: u, Err: err}
	}
	return nil
}

// do issues one request and returns the response body for 2xx statuses.
// Anything else becomes an *Error.
func (c *Client) do(ctx context.Context, op, method, u string, body []byte) ([]byte, *Error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, &Error{Op: op, URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed", "op", op, "url", u, "err", err)
		return nil, &Error{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, URL: u, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("backend error", "op", op, "url", u, "status", resp.StatusCode)
		return nil, &Error{Op: op, URL: u, Status: resp.StatusCode}
	}
	return b, nil
}
