// Package backend is the HTTP transport to the grades API. It speaks the
// backend's native JSON and leaves all shape normalization to resolve.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gradebase/pkg/logger"
	"github.com/okian/gradebase/pkg/metrics"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultPageSize = 1000

	// maxPages bounds how many "next" links one collection read follows.
	maxPages = 100

	headerRequestID = "X-Request-ID"
)

// Request outcomes recorded on the backend metrics.
const (
	outcomeOK           = "ok"
	outcomeTransport    = "transport"
	outcomeValidation   = "validation"
	outcomeUnauthorized = "unauthorized"
)

// Client calls the grades API.
type Client struct {
	base     *url.URL
	http     *http.Client
	timeout  time.Duration
	pageSize int
	creds    CredentialProvider
	log      logger.Logger
	now      func() time.Time
}

// New builds a client for the API rooted at baseURL
// (e.g. http://localhost:8000/api).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		base:     u,
		http:     &http.Client{},
		timeout:  defaultTimeout,
		pageSize: defaultPageSize,
		log:      logger.Default().Named("backend"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PageSize returns the page_size sent on collection requests.
func (c *Client) PageSize() int { return c.pageSize }

// call describes one round-trip.
type call struct {
	op     string
	method string
	path   string // relative to base, or absolute when following "next"
	query  url.Values
	body   any
}

// response is a successful round-trip.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) endpoint(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	return c.base.ResolveReference(ref), nil
}

func (c *Client) do(ctx context.Context, cl call) (response, error) {
	start := time.Now()
	resp, outcome, err := c.roundTrip(ctx, cl)
	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordBackendRequest(cl.op, outcome, ms)

	if err != nil {
		c.log.Warn(ctx, "backend request failed",
			logger.String("op", cl.op),
			logger.String("outcome", outcome),
			logger.Float64("latency_ms", ms),
			logger.Error(err))
		return response{}, err
	}
	c.log.Debug(ctx, "backend request",
		logger.String("op", cl.op),
		logger.Int("status", resp.status),
		logger.Int("bytes", len(resp.body)),
		logger.Float64("latency_ms", ms))
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, cl call) (response, string, error) {
	fail := func(status int, kind error, msg string, cause error) (response, string, error) {
		outcome := outcomeTransport
		switch kind {
		case ErrValidation:
			outcome = outcomeValidation
		case ErrUnauthorized:
			outcome = outcomeUnauthorized
		}
		return response{}, outcome, &Error{Op: cl.op, Status: status, Message: msg, Kind: kind, Err: cause}
	}

	u, err := c.endpoint(cl.path)
	if err != nil {
		return fail(0, ErrTransport, "", err)
	}
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var payload io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return fail(0, ErrTransport, "", fmt.Errorf("marshal request body: %w", err))
		}
		payload = bytes.NewReader(buf)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), payload)
	if err != nil {
		return fail(0, ErrTransport, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, uuid.New().String())
	if c.creds != nil {
		if tok, ok := c.creds.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fail(0, ErrTransport, "", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fail(res.StatusCode, ErrTransport, "", fmt.Errorf("read response body: %w", err))
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return response{status: res.StatusCode, header: res.Header, body: body}, outcomeOK, nil
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		if c.creds != nil {
			c.creds.Invalidate(ctx)
		}
		return fail(res.StatusCode, ErrUnauthorized, backendMessage(body), nil)
	case res.StatusCode == http.StatusBadRequest ||
		res.StatusCode == http.StatusConflict ||
		res.StatusCode == http.StatusUnprocessableEntity:
		return fail(res.StatusCode, ErrValidation, backendMessage(body), nil)
	default:
		return fail(res.StatusCode, ErrTransport, "", nil)
	}
}

// backendMessage extracts a human message from a REST framework error body:
// "detail", then "non_field_errors", then the first field error by name.
func backendMessage(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return strings.TrimSpace(string(body))
	}
	switch t := v.(type) {
	case string:
		return t
	case []any:
		return firstText(t)
	case map[string]any:
		if s := firstText(t["detail"]); s != "" {
			return s
		}
		if s := firstText(t["non_field_errors"]); s != "" {
			return s
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := firstText(t[k]); s != "" {
				return k + ": " + s
			}
		}
	}
	return ""
}

func firstText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, it := range t {
			if s := firstText(it); s != "" {
				return s
			}
		}
	}
	return ""
}

