package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

const wsPingInterval = 30 * time.Second
const wsWriteTimeout = 5 * time.Second

func (c *Client) readWebSocket(ctx context.Context, id ulid.ULID, path string, deliver func([]byte)) error {
	u, err := c.streamURL(path)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	ws, res, err := c.dialer.DialContext(ctx, u.String(), http.Header{})
	if err != nil {
		if res != nil && res.StatusCode != http.StatusSwitchingProtocols {
			return newRequestError(res, nil)
		}
		return err
	}
	defer ws.Close()
	glog.V(2).Infof("[s]%s ws connected\n", id)

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				ws.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteTimeout),
				)
				ws.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					glog.V(2).Infof("[s]%s ping error = %s\n", id, err)
				}
			}
		}
	}()

	for {
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			deliver(message)
		}
	}
}
