package ws

import (
	"sync"

	"github.com/anchorsync/anchorsync/internal/infrastructure/session"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client owns one live WebSocket connection: a read pump feeding the
// relay and a write pump draining a buffered send channel. Slow
// consumers have messages dropped rather than blocking a broadcast.
type Client struct {
	id     session.ConnID
	sock   *connWrapper
	send   chan Message
	done   chan struct{}
	once   sync.Once
	logger *zap.SugaredLogger
}

func NewClient(id session.ConnID, conn *websocket.Conn, sendBuffer int, maxMessageBytes int64, logger *zap.SugaredLogger) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}

	sock := newConnWrapper(conn)
	if maxMessageBytes > 0 {
		sock.SetReadLimit(maxMessageBytes)
	}

	return &Client{
		id:     id,
		sock:   sock,
		send:   make(chan Message, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *Client) ID() session.ConnID { return c.id }

// Send enqueues a message best-effort. A full buffer or a closed
// connection drops the message; broadcast delivery is not guaranteed.
func (c *Client) Send(msg Message) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warnw("send buffer full, dropping message", "conn", c.id, "type", msg.MessageType())
	}
}

// Open reports whether the connection is still usable for sends.
func (c *Client) Open() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// shutdown runs the disconnect sequence exactly once, no matter how
// many of the close/error paths fire.
func (c *Client) shutdown(relay *Relay) {
	c.once.Do(func() {
		close(c.done)
		relay.HandleDisconnect(c.id)
		_ = c.sock.Close()
	})
}

// ReadPump processes inbound frames serially until the transport
// closes or errors, then runs the disconnect sequence.
func (c *Client) ReadPump(relay *Relay) {
	defer c.shutdown(relay)

	for {
		_, raw, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warnw("read error", "conn", c.id, "err", err)
			}
			return
		}

		relay.HandleMessage(c.id, raw)
	}
}

// WritePump drains the send channel onto the socket. A write failure
// closes the socket, which unblocks the read pump and triggers the
// disconnect sequence there.
func (c *Client) WritePump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.sock.WriteJSON(msg); err != nil {
				c.logger.Warnw("write error", "conn", c.id, "err", err)
				_ = c.sock.Close()
				return
			}
		}
	}
}
