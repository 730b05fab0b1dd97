/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrClosed is returned by a Channel once the underlying connection is gone.
var ErrClosed = errors.New("channel closed")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	sendQueueSize  = 128
	maxMessageSize = 4096
)

// Channel is one player's live, ordered, bidirectional connection.
//
// Send must not block: it either enqueues the message or reports ErrClosed,
// which callers treat as a disconnect. Recv blocks until a well-formed client
// message arrives; malformed input is logged and skipped inside Recv.
type Channel interface {
	Send(msg any) error
	Recv() (ClientMessage, error)
	Close() error
}

// WSChannel is a Channel backed by a gorilla websocket connection. Outbound
// messages are serialised immediately and written by a dedicated pump
// goroutine, so enqueue order is wire order.
type WSChannel struct {
	conn    *websocket.Conn
	send    chan []byte
	closed  chan struct{}
	once    sync.Once
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewWSChannel takes ownership of conn and starts its write pump.
func NewWSChannel(conn *websocket.Conn, logger zerolog.Logger) *WSChannel {
	c := &WSChannel{
		conn:    conn,
		send:    make(chan []byte, sendQueueSize),
		closed:  make(chan struct{}),
		limiter: rate.NewLimiter(10, 30),
		log:     logger,
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.writePump()

	return c
}

func (c *WSChannel) Send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to serialize websocket message")
		return nil
	}

	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.closed:
		return ErrClosed
	default:
		// A client this far behind is not coming back.
		c.log.Debug().Msg("send queue full, dropping connection")
		_ = c.Close()
		return ErrClosed
	}
}

func (c *WSChannel) Recv() (ClientMessage, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			_ = c.Close()
			return ClientMessage{}, ErrClosed
		}

		if kind != websocket.TextMessage {
			c.log.Warn().Int("kind", kind).Msg("ignoring unexpected websocket message")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn().Err(err).Msg("failed to deserialize websocket message")
			continue
		}

		if err := msg.validate(); err != nil {
			c.log.Warn().Err(err).Msg("dropping invalid websocket message")
			continue
		}

		if !c.limiter.Allow() {
			c.log.Warn().Str("type", msg.Type).Msg("rate limit exceeded, dropping message")
			continue
		}

		return msg, nil
	}
}

// Close is idempotent and never blocks; the write pump sends the close frame
// and tears down the connection.
func (c *WSChannel) Close() error {
	c.once.Do(func() {
		close(c.closed)
	})

	return nil
}

func (c *WSChannel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug().Err(err).Msg("websocket write failed")
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}
