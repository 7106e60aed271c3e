package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"byte-battle/internal/battle"
	"byte-battle/internal/stream"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	commandTimeout = 10 * time.Second
	maxFrameBytes  = 128 * 1024
)

// Client is one websocket connection. Its handle in the stream hub is what
// rooms store as the member's connection.
type Client struct {
	conn   *websocket.Conn
	actor  battle.Identity
	handle string
	buf    *stream.Buffer
	send   chan []byte
}

type Server struct {
	hub        *stream.Hub
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
}

func NewServer(hub *stream.Hub, dispatcher *Dispatcher) *Server {
	return &Server{
		hub:        hub,
		dispatcher: dispatcher,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Serve upgrades the request and runs the connection until either side closes.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, actor battle.Identity) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	handle, buf := s.hub.Open(actor.ID)
	c := &Client{conn: conn, actor: actor, handle: handle, buf: buf, send: make(chan []byte, 16)}
	metricSocketsTotal.Add(1)
	metricSocketsActive.Add(1)
	log.Info().Str("actor_id", actor.ID).Str("conn_id", handle).Msg("ws_connected")

	events := buf.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(c, events)
	}()
	s.readLoop(r.Context(), c, done)

	buf.Unsubscribe(events)
	close(c.send)
	<-done
	s.hub.Release(handle)
	_ = conn.Close()
	metricSocketsActive.Add(-1)
	log.Info().Str("actor_id", actor.ID).Str("conn_id", handle).Msg("ws_disconnected")
}

func (s *Server) readLoop(ctx context.Context, c *Client, writerDone <-chan struct{}) {
	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		ack := s.handleMessage(ctx, c, raw)
		msg, _ := json.Marshal(ack)
		select {
		case c.send <- msg:
		case <-writerDone:
			return
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, c *Client, raw []byte) Ack {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
		return fail(Ack{Type: "ack", ProtocolVersion: ProtocolVersion}, ErrInvalidMessage)
	}
	// Any frame from the socket proves the handle is alive.
	s.hub.Lookup(c.handle, c.actor.ID)
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return s.dispatcher.Dispatch(ctx, c.actor, c.handle, msg)
}

// writeLoop owns all writes to the socket. It closes the socket when a write
// fails so the read loop unblocks.
func (s *Server) writeLoop(c *Client, events chan stream.Event) {
	defer c.conn.Close()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	send := c.send
	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			msg, err := json.Marshal(newEventFrame(ev))
			if err != nil {
				log.Error().Err(err).Str("event_type", ev.Type).Msg("event_encode_failed")
				continue
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
