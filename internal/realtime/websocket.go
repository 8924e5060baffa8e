package realtime

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single write to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long we wait for a pong before declaring the
	// connection dead. pingPeriod must be shorter.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize bounds the per-connection outbound queue. A full
	// buffer means the client cannot keep up and the connection is
	// dropped rather than letting it backpressure publishers.
	sendBufferSize = 64
)

// ErrSinkOverflow is returned by Send when the outbound buffer is full.
var ErrSinkOverflow = errors.New("realtime: send buffer full")

// ErrSinkClosed is returned by Send after the connection has shut down.
var ErrSinkClosed = errors.New("realtime: sink closed")

// WSConn wraps a WebSocket connection as a Sink. Writes go through a
// buffered channel drained by a single writer goroutine, since gorilla
// connections allow at most one concurrent writer.
type WSConn struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewWSConn wraps an upgraded connection. The caller must invoke Run to
// start the read and write pumps.
func NewWSConn(conn *websocket.Conn, logger *slog.Logger) *WSConn {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSConn{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

var _ Sink = (*WSConn)(nil)

// Send implements Sink.Send
func (c *WSConn) Send(message []byte) error {
	select {
	case <-c.done:
		return ErrSinkClosed
	default:
	}

	select {
	case c.send <- message:
		return nil
	default:
		return ErrSinkOverflow
	}
}

// Close implements Sink.Close
func (c *WSConn) Close() {
	c.once.Do(func() {
		close(c.done)
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("error closing websocket", slog.String("error", err.Error()))
		}
	})
}

// Run services the connection until the peer disconnects or Close is
// called. It blocks, so the HTTP handler that upgraded the connection
// should call it directly. The remove function is invoked exactly once
// when the connection ends.
func (c *WSConn) Run(remove func()) {
	defer func() {
		c.Close()
		if remove != nil {
			remove()
		}
	}()

	go c.writePump()
	c.readPump()
}

// readPump consumes inbound frames. Clients do not send application
// messages; the read loop exists to process control frames and to notice
// when the peer goes away.
func (c *WSConn) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump drains the send channel and keeps the connection alive with
// periodic pings.
func (c *WSConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
