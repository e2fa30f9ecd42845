package rmd

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/psulibraries/rmdlink/pkg/buildinfo"
	"github.com/psulibraries/rmdlink/pkg/errors"
	"github.com/psulibraries/rmdlink/pkg/observability"
)

const (
	// DefaultHTTPTimeout bounds a single outbound request.
	DefaultHTTPTimeout = 10 * time.Second

	// MaxBodySize is the largest response body HTTPClient will read.
	MaxBodySize = 8 << 20
)

// HTTPGetter issues GET requests to the RMD API.
//
// Get returns the status code and body for any HTTP response, including
// non-2xx ones. err is non-nil only when no usable response was received.
type HTTPGetter interface {
	Get(ctx context.Context, url string, headers map[string]string) (status int, body []byte, err error)
}

// HTTPClient is the net/http implementation of [HTTPGetter].
// It is safe for concurrent use.
type HTTPClient struct {
	http    *http.Client
	headers map[string]string
}

// NewHTTPClient creates a client whose requests time out after timeout
// (zero selects [DefaultHTTPTimeout]). headers are sent with every request;
// per-request headers override them. A User-Agent naming the build is added
// unless headers sets one.
func NewHTTPClient(timeout time.Duration, headers map[string]string) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	defaults := map[string]string{"User-Agent": buildinfo.UserAgent()}
	for k, v := range headers {
		defaults[k] = v
	}
	return &HTTPClient{
		http:    &http.Client{Timeout: timeout},
		headers: defaults,
	}
}

// Get implements [HTTPGetter]. Transport failures are returned as
// NETWORK_ERROR or TIMEOUT errors, oversized bodies as MALFORMED_RESPONSE.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, headers map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return 0, nil, transportError(err, rawURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return 0, nil, transportError(err, rawURL)
	}
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if len(body) > MaxBodySize {
		return resp.StatusCode, nil, errors.New(errors.ErrCodeMalformedResponse,
			"GET %s: response body exceeds %d bytes", rawURL, MaxBodySize)
	}
	return resp.StatusCode, body, nil
}

func transportError(err error, rawURL string) error {
	var ne net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &ne) && ne.Timeout()) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "GET %s", rawURL)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL)
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}

var _ HTTPGetter = (*HTTPClient)(nil)

