package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/ecomap/wastemap/internal/adapter"
	"github.com/ecomap/wastemap/pkg/core"
	"github.com/ecomap/wastemap/pkg/streaming"
)

const (
	sendChSize     = 64
	writeWait      = 10 * time.Second
	commandTimeout = 5 * time.Second
	maxMessageSize = 4096
)

var errUnknownMessage = errors.New("unknown message type")

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := newConnection(conn, s.widget, s.logger.With("remote", r.RemoteAddr))
	c.serve()
}

// connection streams state snapshots to one client and applies its
// commands. A single goroutine writes to the socket.
type connection struct {
	conn   *ws.Conn
	widget Widget
	states <-chan adapter.State
	sendCh chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newConnection(conn *ws.Conn, w Widget, logger *slog.Logger) *connection {
	return &connection{
		conn:   conn,
		widget: w,
		states: w.Subscribe(),
		sendCh: make(chan []byte, sendChSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// serve blocks until the client goes away.
func (c *connection) serve() {
	c.logger.Debug("WebSocket client connected")
	go c.writeLoop()
	c.readLoop()
	c.close()
	c.logger.Debug("WebSocket client disconnected")
}

// writeLoop forwards state snapshots and replies to the socket.
// It returns on error or shutdown.
func (c *connection) writeLoop() {
	for {
		var data []byte
		select {
		case <-c.done:
			return
		case state, ok := <-c.states:
			if !ok {
				return
			}
			msg, err := streaming.Marshal(streaming.TypeState, state)
			if err != nil {
				c.logger.Error("Failed to encode state", "error", err)
				continue
			}
			data = msg
		case data = <-c.sendCh:
		}

		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			c.logger.Warn("WebSocket SetWriteDeadline error", "error", err)
			c.close()
			return
		}
		if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
			c.logger.Warn("WebSocket write error", "error", err)
			c.close()
			return
		}
	}
}

// readLoop applies client commands until the socket fails.
func (c *connection) readLoop() {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				c.logger.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var env streaming.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.reply(streaming.ErrorMessage{Type: streaming.TypeError, Error: "invalid message"})
			continue
		}

		if err := c.apply(env); err != nil {
			c.reply(streaming.ErrorMessage{Type: streaming.TypeError, For: env.Type, Error: err.Error()})
			continue
		}
		c.reply(streaming.AckMessage{Type: streaming.TypeAck, For: env.Type})
	}
}

func (c *connection) apply(env streaming.Envelope) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch env.Type {
	case streaming.TypeSelectCategory:
		var p streaming.SelectCategoryPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		return c.widget.SelectCategory(ctx, core.Category(p.Category))
	case streaming.TypeClosePopup:
		return c.widget.ClosePopup(ctx)
	case streaming.TypeClick:
		var p streaming.ClickPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		return c.widget.Click(ctx, p.ID)
	case streaming.TypeSetZoom:
		var p streaming.SetZoomPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		_, err := c.widget.SetZoom(ctx, p.Zoom)
		return err
	default:
		return errUnknownMessage
	}
}

// reply queues v for the write loop. Non-blocking; drops if channel full.
func (c *connection) reply(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to encode reply", "error", err)
		return
	}
	select {
	case c.sendCh <- data:
	default:
		c.logger.Warn("WebSocket send channel full, dropping message")
	}
}

// close sends a close frame and releases the subscription.
func (c *connection) close() {
	c.once.Do(func() {
		close(c.done)
		c.widget.Unsubscribe(c.states)
		_ = c.conn.WriteControl(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		_ = c.conn.Close()
	})
}
