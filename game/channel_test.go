/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMessageValidate(t *testing.T) {
	typing, reaction := false, 2

	assert.NoError(t, ClientMessage{Type: TypeStartGame}.validate())
	assert.NoError(t, ClientMessage{Type: TypeIncomingMsg, Msg: "hi"}.validate())
	assert.NoError(t, ClientMessage{Type: TypeTypingStatus, Typing: &typing}.validate())
	assert.NoError(t, ClientMessage{Type: TypeEmoteReaction, Reaction: &reaction}.validate())

	assert.ErrorIs(t, ClientMessage{Type: TypeIncomingMsg}.validate(), errMissingField)
	assert.ErrorIs(t, ClientMessage{Type: TypeTypingStatus}.validate(), errMissingField)
	assert.ErrorIs(t, ClientMessage{Type: TypeEmoteReaction}.validate(), errMissingField)
	assert.Error(t, ClientMessage{Type: "self-destruct"}.validate())
}

// echoServer answers the first valid message with a chat line quoting it.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		ch := NewWSChannel(conn, zerolog.Nop())
		for {
			msg, err := ch.Recv()
			if err != nil {
				return
			}
			if err := ch.Send(ChatMessage{State: StateChat, Type: "message", Msg: msg.Msg}); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestWSChannelSkipsBadMessages(t *testing.T) {
	conn := dial(t, echoServer(t))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": TypeIncomingMsg}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": TypeIncomingMsg, "msg": "hello"}))

	_ = conn.SetReadDeadline(time.Now().Add(waitFor))

	var got ChatMessage
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, StateChat, got.State)
	assert.Equal(t, "hello", got.Msg)
}

func TestWSChannelSendAfterClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	result := make(chan error, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		ch := NewWSChannel(conn, zerolog.Nop())
		_ = ch.Close()
		_ = ch.Close()
		result <- ch.Send(SimpleMessage{State: StateLoading})
	}))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)

	select {
	case err := <-result:
		assert.True(t, errors.Is(err, ErrClosed))
	case <-time.After(waitFor):
		t.Fatal("server never tried to send")
	}

	_ = conn.SetReadDeadline(time.Now().Add(waitFor))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestWSChannelOverflowDoesNotTouchConnection(t *testing.T) {
	// No conn and no write pump: Send and Close must only touch the queue.
	c := &WSChannel{
		send:   make(chan []byte, 1),
		closed: make(chan struct{}),
		log:    zerolog.Nop(),
	}

	require.NoError(t, c.Send(SimpleMessage{State: StateLoading}))

	done := make(chan error, 1)
	go func() { done <- c.Send(SimpleMessage{State: StateLoading}) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(waitFor):
		t.Fatal("send blocked on a full queue")
	}

	select {
	case <-c.closed:
	default:
		t.Fatal("overflow did not close the channel")
	}
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send(SimpleMessage{State: StateLoading}), ErrClosed)
}
