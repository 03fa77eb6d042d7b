// FILE: internal/fetch/http_client.go
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ClientOptions for the fetch client.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	// RetryMax is the number of retries after the first attempt. Zero
	// means a failed call surfaces immediately.
	RetryMax int
	Logger   *zap.Logger
}

// Client is a small wrapper around retryablehttp to provide timeouts and UA.
type Client struct {
	inner     *retryablehttp.Client
	userAgent string
}

// NewClient creates a new Client.
func NewClient(opts ClientOptions) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = opts.RetryMax
	r.HTTPClient.Timeout = opts.Timeout
	// hand the final response back so callers can report the status code
	r.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Logger != nil {
		r.Logger = zapLeveled{opts.Logger.Sugar()}
	} else {
		// silence the default stderr logger
		r.Logger = nil
	}
	return &Client{inner: r, userAgent: opts.UserAgent}
}

// Get issues a GET with the given headers, bound to ctx.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.inner.Do(req)
}

// zapLeveled adapts a zap sugared logger to retryablehttp.LeveledLogger.
// The query string is dropped from any "url" field since it may carry
// credentials.
type zapLeveled struct {
	s *zap.SugaredLogger
}

func (l zapLeveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, scrubURL(kv)...) }
func (l zapLeveled) Info(msg string, kv ...interface{})  { l.s.Infow(msg, scrubURL(kv)...) }
func (l zapLeveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, scrubURL(kv)...) }
func (l zapLeveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, scrubURL(kv)...) }

func scrubURL(kv []interface{}) []interface{} {
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		if key, ok := out[i].(string); !ok || key != "url" {
			continue
		}
		raw := fmt.Sprint(out[i+1])
		if u, err := url.Parse(raw); err == nil {
			u.RawQuery = ""
			out[i+1] = u.String()
		} else if j := strings.IndexByte(raw, '?'); j >= 0 {
			out[i+1] = raw[:j]
		}
	}
	return out
}
