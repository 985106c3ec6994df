// Package transport is the HTTP facade the rest of feedterm talks to the
// nakama API through: JSON requests with normalized failures, and a
// cancellable server-push subscription.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const defaultHttpTimeout = 60 * time.Second
const defaultHttpConnectTimeout = 5 * time.Second
const defaultHttpTlsTimeout = 5 * time.Second
const defaultReconnectDelay = 3 * time.Second

// responses larger than this are a server bug, not a timeline page
const maxBodySize = 4 << 20

// Authenticator reports the current session. It is consulted on every
// request so login and logout take effect immediately.
type Authenticator interface {
	IsAuthenticated() bool
	Token() string
}

// StreamKind selects how Subscribe reaches the push channel.
type StreamKind string

const (
	StreamSSE       StreamKind = "sse"
	StreamWebSocket StreamKind = "websocket"
)

type Client struct {
	base           *url.URL
	auth           Authenticator
	http           *http.Client
	stream         *http.Client
	dialer         *websocket.Dialer
	streamKind     StreamKind
	reconnectDelay time.Duration
}

type Option func(*Client)

// WithTimeout bounds every non-streaming request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if 0 < timeout {
			c.http.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the request client. Streams reuse its transport
// without the overall timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.stream = &http.Client{Transport: hc.Transport}
	}
}

func WithStreamKind(kind StreamKind) Option {
	return func(c *Client) {
		c.streamKind = kind
	}
}

func WithReconnectDelay(delay time.Duration) Option {
	return func(c *Client) {
		if 0 < delay {
			c.reconnectDelay = delay
		}
	}
}

// New creates a client for the API rooted at baseURL. auth may be nil for
// anonymous use.
func New(baseURL string, auth Authenticator, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	transport := defaultTransport()
	c := &Client{
		base: base,
		auth: auth,
		http: &http.Client{
			Transport: transport,
			Timeout:   defaultHttpTimeout,
		},
		stream: &http.Client{Transport: transport},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHttpTlsTimeout + defaultHttpConnectTimeout,
		},
		streamKind:     StreamSSE,
		reconnectDelay: defaultReconnectDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func defaultTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout: defaultHttpConnectTimeout,
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultHttpTlsTimeout,
	}
}

// Get issues a GET and decodes the JSON response into out (when non-nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON (when non-nil) and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref), nil
}

func (c *Client) token() string {
	if c.auth == nil || !c.auth.IsAuthenticated() {
		return ""
	}
	return c.auth.Token()
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	u, err := c.resolve(path)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		glog.V(2).Infof("[http]%s %s %s error = %s\n", requestID, method, u.Path, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	glog.V(2).Infof("[http]%s %s %s %d (%s)\n", requestID, method, u.Path, res.StatusCode, time.Since(start).Round(time.Millisecond))

	if res.StatusCode < 200 || 300 <= res.StatusCode {
		return newRequestError(res, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
