package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"org-relay/contract"
	"org-relay/domain"
	"org-relay/domain/event"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Options tune a connection's buffers and deadlines.
type Options struct {
	BufferSize     int
	MaxMessageSize int64
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	AllowedOrigins []string
}

func DefaultOptions() Options {
	return Options{
		BufferSize:     64,
		MaxMessageSize: 64 * 1024,
		WriteTimeout:   10 * time.Second,
		PongTimeout:    60 * time.Second,
	}
}

// pingPeriod must stay below the pong timeout so an idle but healthy client is not dropped.
func (o Options) pingPeriod() time.Duration {
	return (o.PongTimeout * 9) / 10
}

// Handler upgrades HTTP requests and drives one relay connection per socket.
type Handler struct {
	relay    contract.IRelay
	upgrader websocket.Upgrader
	opts     Options
	log      *slog.Logger
}

func NewHandler(log *slog.Logger, relay contract.IRelay, opts Options) *Handler {
	defaults := DefaultOptions()
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaults.WriteTimeout
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = defaults.PongTimeout
	}
	h := &Handler{relay: relay, opts: opts, log: log}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeHTTP upgrades the request, authenticates it through the relay, then reads
// messages until the client goes away. Nothing is read before the relay admitted the connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		socket: socket,
		sink:   NewSink(h.opts.BufferSize),
		relay:  h.relay,
		opts:   h.opts,
		log:    h.log,
	}
	go c.writePump()

	ctx := r.Context()
	conn, err := h.relay.Open(ctx, authorization(r), c.sink)
	if err != nil {
		// The relay already queued auth_error and closed the sink
		return
	}
	c.readPump(ctx, conn)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || lo.Contains(h.opts.AllowedOrigins, origin)
}

// authorization reads the handshake credentials. Browsers cannot set headers on a
// WebSocket, so an access_token query parameter is accepted as a fallback.
func authorization(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return header
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return "Bearer " + token
	}
	return ""
}

type client struct {
	socket *websocket.Conn
	sink   *Sink
	relay  contract.IRelay
	opts   Options
	log    *slog.Logger
}

// readPump routes inbound events in the order they were read,
// which keeps one sender's messages to one recipient in order.
func (c *client) readPump(ctx context.Context, conn *domain.Connection) {
	defer func() {
		c.relay.Close(ctx, conn)
		_ = c.sink.Close()
	}()

	c.socket.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	})

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("WebSocket read error", "connection_id", conn.ID, "error", err)
			}
			return
		}
		c.handle(ctx, conn, data)
	}
}

func (c *client) handle(ctx context.Context, conn *domain.Connection, data []byte) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.log.Debug("Ignoring undecodable frame", "connection_id", conn.ID, "error", err)
		return
	}

	switch event.Name(envelope.Event) {
	case event.MessageName:
		var inbound domain.InboundMessage
		if err := json.Unmarshal(envelope.Data, &inbound); err != nil {
			c.log.Debug("Ignoring undecodable message", "connection_id", conn.ID, "error", err)
			return
		}
		c.relay.Deliver(ctx, conn, inbound)
	default:
		c.log.Debug("Ignoring unknown event", "connection_id", conn.ID, "event", envelope.Event)
	}
}

// writePump is the only writer of the socket.
// Once the sink is closed it flushes the frames already queued, then closes the socket.
func (c *client) writePump() {
	ticker := time.NewTicker(c.opts.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case frame := <-c.sink.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				c.log.Debug("WebSocket write failed", "error", err)
				_ = c.sink.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				_ = c.sink.Close()
				return
			}
		case <-c.sink.Done():
			c.flush()
			_ = c.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *client) flush() {
	for {
		select {
		case frame := <-c.sink.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *client) write(messageType int, data []byte) error {
	_ = c.socket.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	return c.socket.WriteMessage(messageType, data)
}
