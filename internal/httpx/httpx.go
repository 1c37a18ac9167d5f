// Package httpx is the HTTP collaborator behind listing and theatre lookups.
//
// Client.Do never returns an error value: every call yields a Result tagged
// success or failure, with the failure cause attached for logging and
// notification. Replayable requests (GET/HEAD without a body) are retried a
// bounded number of times on transport errors; every call is bounded by a
// total timeout.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marquee/internal/services"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultRetryMax = 2
	maxBodyBytes    = 8 << 20
	userAgent       = "marquee/1.0 (+cinema listing watcher)"
)

// Request describes one outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// Result is the outcome of Client.Do. Err is set whenever Success is false.
// Status and Body are populated whenever a response was received, including
// non-2xx responses.
type Result struct {
	Success bool
	Status  int
	Body    []byte
	Err     error
}

// HTTPDoer matches *http.Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Transport retries replayable requests on transport errors.
type Transport struct {
	Base http.RoundTripper

	// RetryMax is the number of retries after the first attempt.
	RetryMax int
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	retries := max(t.RetryMax, 0)
	if !canRetry {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		resp, err := base.RoundTrip(req.Clone(req.Context()))
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// Client issues Requests and folds every outcome into a Result.
type Client struct {
	doer      HTTPDoer
	component string
	maxBody   int64
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying doer (useful for tests).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.doer = doer
		}
	}
}

// WithComponent names the caller in wrapped errors.
func WithComponent(component string) Option {
	return func(c *Client) {
		c.component = strings.TrimSpace(component)
	}
}

// NewClient builds a client with a retrying transport and a total timeout.
// A non-positive timeout selects the default.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		doer: &http.Client{
			Timeout: timeout,
			Transport: &Transport{
				Base: &http.Transport{
					Proxy:                 http.ProxyFromEnvironment,
					TLSHandshakeTimeout:   10 * time.Second,
					ResponseHeaderTimeout: 15 * time.Second,
				},
				RetryMax: defaultRetryMax,
			},
		},
		component: "http",
		maxBody:   maxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs req. It never panics on bad input and never returns an error
// value: failures are reported through Result.Err with services.ErrTransport.
func (c *Client) Do(ctx context.Context, req Request) Result {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != "" && method != http.MethodGet && method != http.MethodHead {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return Result{Err: services.Wrap(services.ErrTransport, c.component, "build request", req.URL, err)}
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return Result{Err: services.Wrap(services.ErrTransport, c.component, method, redactURL(req.URL), err)}
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	oversized := int64(len(payload)) > c.maxBody
	if oversized {
		payload = payload[:c.maxBody]
	}
	result := Result{Status: resp.StatusCode, Body: payload}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Err = services.Wrap(
			services.ErrTransport,
			c.component,
			method,
			fmt.Sprintf("%s returned http %d", redactURL(req.URL), resp.StatusCode),
			nil,
		)
		return result
	}
	if readErr != nil {
		result.Err = services.Wrap(services.ErrTransport, c.component, "read body", redactURL(req.URL), readErr)
		return result
	}
	if oversized {
		result.Err = services.Wrap(
			services.ErrTransport,
			c.component,
			"read body",
			fmt.Sprintf("%s response body exceeds %d bytes", redactURL(req.URL), c.maxBody),
			nil,
		)
		return result
	}
	result.Success = true
	return result
}

// redactURL drops the query string, which commonly carries API keys.
func redactURL(raw string) string {
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}
