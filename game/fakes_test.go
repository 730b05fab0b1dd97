/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Seednode/guessthesong/songs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	poll    = time.Millisecond
)

// fakeChannel records every outbound message as JSON and feeds queued
// client messages to the room.
type fakeChannel struct {
	in     chan ClientMessage
	closed chan struct{}
	once   sync.Once

	mu   sync.Mutex
	sent []map[string]any
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		in:     make(chan ClientMessage, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeChannel) Send(msg any) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	c.mu.Lock()
	c.sent = append(c.sent, decoded)
	c.mu.Unlock()

	return nil
}

func (c *fakeChannel) Recv() (ClientMessage, error) {
	select {
	case msg := <-c.in:
		return msg, nil
	case <-c.closed:
		return ClientMessage{}, ErrClosed
	}
}

func (c *fakeChannel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeChannel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeChannel) push(msg ClientMessage) {
	c.in <- msg
}

func (c *fakeChannel) say(text string) {
	c.push(ClientMessage{Type: TypeIncomingMsg, Msg: text})
}

func (c *fakeChannel) states() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.sent))
	for _, m := range c.sent {
		s, _ := m["state"].(string)
		out = append(out, s)
	}
	return out
}

func (c *fakeChannel) count(state string) int {
	n := 0
	for _, s := range c.states() {
		if s == state {
			n++
		}
	}
	return n
}

// last returns the most recent message with the given state.
func (c *fakeChannel) last(state string) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i]["state"] == state {
			return c.sent[i]
		}
	}
	return nil
}

// fakeSongs hands out titles in order, or fails with err.
type fakeSongs struct {
	mu     sync.Mutex
	titles []string
	err    error
	calls  int
	closed bool
}

func (s *fakeSongs) Next(ctx context.Context) (songs.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return songs.Song{}, s.err
	}
	title := s.titles[s.calls%len(s.titles)]
	s.calls++

	return songs.Song{Title: title, Audio: []byte(title)}, nil
}

func (s *fakeSongs) Name() string { return "Test Hits" }

func (s *fakeSongs) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *fakeSongs) nextCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func newTestRoom(t *testing.T, settings Settings, source SongSource) *Room {
	t.Helper()

	if settings.Tick == 0 {
		settings.Tick = time.Millisecond
	}
	r := NewRoom(1, settings, source, zerolog.Nop())
	t.Cleanup(r.Close)

	return r
}

func isConnected(r *Room, id PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerLocked(id)
	return p != nil && p.connected()
}

func guessed(r *Room, id PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerLocked(id)
	return p != nil && p.guessed != nil
}

func connect(t *testing.T, r *Room, id PlayerID) *fakeChannel {
	t.Helper()

	ch := newFakeChannel()
	go r.Connect(context.Background(), id, ch)

	require.Eventually(t, func() bool { return isConnected(r, id) }, waitFor, poll)

	return ch
}

func waitState(t *testing.T, r *Room, want State) {
	t.Helper()

	require.Eventually(t, func() bool { return r.State() == want }, waitFor, poll, "room never reached %s", want)
}

// startGame takes every player from the lobby into the first round and
// returns their post-reload channels.
func startGame(t *testing.T, r *Room, lobby map[PlayerID]*fakeChannel) map[PlayerID]*fakeChannel {
	t.Helper()

	var host *fakeChannel
	for _, ch := range lobby {
		host = ch
		break
	}
	host.push(ClientMessage{Type: TypeStartGame})
	waitState(t, r, WaitingForReconnect)

	for _, ch := range lobby {
		_ = ch.Close()
	}

	game := make(map[PlayerID]*fakeChannel, len(lobby))
	for id := range lobby {
		game[id] = connect(t, r, id)
	}
	waitState(t, r, WaitingForLoaded)

	for _, ch := range game {
		ch.push(ClientMessage{Type: TypeAudioLoaded})
	}
	waitState(t, r, RoundStarted)

	return game
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
