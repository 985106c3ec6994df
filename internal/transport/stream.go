package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
	"go.uber.org/atomic"
)

// sse frames larger than this are dropped with the connection
const maxEventSize = 1 << 20

// Subscribe opens the push channel at path and calls onMessage for every
// message that decodes as JSON; anything else is dropped silently. The
// channel reconnects after the configured delay until the returned cancel
// is called. Deliveries happen one at a time on a single goroutine.
// cancel is idempotent.
func (c *Client) Subscribe(path string, onMessage func(json.RawMessage)) (cancel func()) {
	id := ulid.Make()
	ctx, stop := context.WithCancel(context.Background())
	cancelled := atomic.NewBool(false)

	deliver := func(data []byte) {
		if !json.Valid(data) {
			glog.V(2).Infof("[s]%s drop malformed message (%d bytes)\n", id, len(data))
			return
		}
		if ctx.Err() != nil {
			return
		}
		onMessage(json.RawMessage(data))
	}

	glog.V(2).Infof("[s]%s subscribe %s (%s)\n", id, path, c.streamKind)
	go c.run(ctx, id, path, deliver)

	return func() {
		if !cancelled.CompareAndSwap(false, true) {
			return
		}
		glog.V(2).Infof("[s]%s cancel\n", id)
		stop()
	}
}

func (c *Client) run(ctx context.Context, id ulid.ULID, path string, deliver func([]byte)) {
	for {
		var err error
		switch c.streamKind {
		case StreamWebSocket:
			err = c.readWebSocket(ctx, id, path, deliver)
		default:
			err = c.readEvents(ctx, id, path, deliver)
		}
		if ctx.Err() != nil {
			return
		}
		glog.Infof("[s]%s %s ended = %v, reconnect in %s\n", id, path, err, c.reconnectDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

// streamURL resolves path and appends the session token as a query
// parameter, since neither EventSource-style streams nor websocket
// handshakes can carry an Authorization header everywhere.
func (c *Client) streamURL(path string) (*url.URL, error) {
	u, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	if token := c.token(); token != "" {
		q := u.Query()
		q.Set("auth_token", token)
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (c *Client) readEvents(ctx context.Context, id ulid.ULID, path string, deliver func([]byte)) error {
	u, err := c.streamURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := c.stream.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
		return newRequestError(res, body)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		return fmt.Errorf("unexpected stream content type %q", ct)
	}
	glog.V(2).Infof("[s]%s connected\n", id)

	return readEventStream(res.Body, deliver)
}

// readEventStream splits an event stream into messages. Multiple data lines
// of one event are joined with newlines; comments and other fields are
// ignored.
func readEventStream(r io.Reader, deliver func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var data []string
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case line == "":
			if 0 < len(data) {
				deliver([]byte(strings.Join(data, "\n")))
				data = data[:0]
			}
		case strings.HasPrefix(line, ":"):
		default:
			field, value, _ := strings.Cut(line, ":")
			if field == "data" {
				data = append(data, strings.TrimPrefix(value, " "))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
