package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// conn serializes writes to one websocket. Replies and voice updates may be
// written from different goroutines.
type conn struct {
	mu           sync.Mutex
	ws           *websocket.Conn
	writeTimeout time.Duration
}

func newConn(ws *websocket.Conn, writeTimeout time.Duration) *conn {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &conn{ws: ws, writeTimeout: writeTimeout}
}

func (c *conn) writeFrame(f outboundFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(f)
}

// UpdateVoice sends the TTS voice selection over the side channel.
func (c *conn) UpdateVoice(ctx context.Context, voice string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.writeFrame(outboundFrame{Type: FrameTTSUpdateOptions, Voice: voice})
}

func (c *conn) close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(c.writeTimeout)
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = c.ws.Close()
}
