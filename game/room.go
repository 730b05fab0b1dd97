/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Seednode/guessthesong/songs"
	"github.com/Seednode/guessthesong/task"
	"github.com/rs/zerolog"
)

// State is the position of a room in its game cycle.
type State int

const (
	Lobby State = iota
	WaitingForReconnect
	WaitingForLoaded
	RoundStarted
)

func (s State) String() string {
	switch s {
	case Lobby:
		return "lobby"
	case WaitingForReconnect:
		return "waiting_for_reconnect"
	case WaitingForLoaded:
		return "waiting_for_loaded"
	case RoundStarted:
		return "round_started"
	default:
		return "unknown"
	}
}

// SongSource hands out the song for each round.
type SongSource interface {
	Next(ctx context.Context) (songs.Song, error)
	Name() string
	Close()
}

// Settings is the static configuration of a room.
type Settings struct {
	Name      string
	Password  string // empty for public rooms
	Rounds    int
	RoundTime int           // seconds
	Warmup    time.Duration // pause before the countdown, lets client audio settle
	Tick      time.Duration // countdown resolution, one second in production
}

// Player is one participant. The roster fields are guarded by the room lock;
// the channel slot has its own lock so broadcasts to different players never
// queue behind each other.
type Player struct {
	ID    PlayerID
	Name  string
	Emoji string

	loaded  bool
	guessed *int // points earned this round, nil until a correct guess
	streak  int
	points  int

	mu sync.Mutex
	ch Channel
}

// send delivers msg if the player is connected. A failed send marks the
// player as disconnected.
func (p *Player) send(msg any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return
	}
	if err := p.ch.Send(msg); err != nil {
		p.ch = nil
	}
}

func (p *Player) connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch != nil
}

// attach installs ch as the live channel and returns the one it replaced.
func (p *Player) attach(ch Channel) Channel {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.ch
	p.ch = ch
	return old
}

// detach clears the slot, but only if it still holds ch; a newer connection
// from the same player must survive the old one shutting down.
func (p *Player) detach(ch Channel) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != ch {
		return false
	}
	p.ch = nil
	return true
}

func (p *Player) resetRound() {
	p.guessed = nil
	p.loaded = false
}

func (p *Player) resetGame() {
	p.resetRound()
	p.streak = 0
	p.points = 0
}

func (p *Player) data() PlayerData {
	gained := 0
	if p.guessed != nil {
		gained = *p.guessed
	}

	return PlayerData{
		UUID:         p.ID,
		Username:     p.Name,
		Points:       p.points + gained,
		PrevPoints:   p.points,
		Streak:       p.streak,
		Emoji:        p.Emoji,
		Loaded:       p.loaded,
		Guessed:      p.guessed != nil,
		Disconnected: !p.connected(),
	}
}

func (p *Player) scoreboardEntry() ScoreboardPlayer {
	gained := 0
	if p.guessed != nil {
		gained = *p.guessed
	}

	return ScoreboardPlayer{
		UUID:        p.ID,
		DisplayName: p.Name,
		Points:      p.points,
		PointDiff:   gained,
		Streak:      p.streak,
	}
}

// Room is one game session. It owns its players, its song source and the
// running round task; everything below mu is only touched with mu held, and
// nothing that can block on the network happens while holding it.
type Room struct {
	Code uint32

	settings  Settings
	scores    ScoreTable
	createdAt time.Time
	log       zerolog.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	players      []*Player
	state        State
	songs        SongSource
	lastActive   time.Time
	currentRound int // zero-indexed
	roundTask    *task.Task
	finalized    bool // current round has been scored
	fetching     bool // a first-turn song fetch is in flight
	currentSong  *songs.Song
	roundStart   time.Time
}

// NewRoom creates a room in the Lobby state. The room takes ownership of
// source and closes it in Close.
func NewRoom(code uint32, settings Settings, source SongSource, logger zerolog.Logger) *Room {
	if settings.Tick <= 0 {
		settings.Tick = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()

	return &Room{
		Code:       code,
		settings:   settings,
		scores:     DefaultScoreTable,
		createdAt:  now,
		log:        logger.With().Uint32("room", code).Logger(),
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		songs:      source,
		lastActive: now,
	}
}

// Join adds a new player to the end of the roster.
func (r *Room) Join(name, emoji string) PlayerID {
	id := NewPlayerID()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.players = append(r.players, &Player{ID: id, Name: name, Emoji: emoji})
	r.lastActive = r.now()

	r.log.Info().Str("player", name).Stringer("id", id).Msg("player joined")

	return id
}

func (r *Room) HasPlayer(id PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.playerLocked(id) != nil
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// CheckPassword reports whether password unlocks the room.
func (r *Room) CheckPassword(password string) bool {
	return r.settings.Password == "" || r.settings.Password == password
}

// Listing summarises the room for the room browser.
func (r *Room) Listing() ListedRoom {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := "Public"
	if r.settings.Password != "" {
		status = "Private"
	}

	return ListedRoom{
		Code:     r.Code,
		GameMode: "Themes",
		Idle:     uint64(r.now().Sub(r.createdAt).Seconds()),
		Name:     r.settings.Name,
		Players:  len(r.players),
		Status:   status,
		Theme:    r.songs.Name(),
	}
}

// Audio returns the current song's audio if id is on the roster.
func (r *Room) Audio(id PlayerID) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.playerLocked(id) == nil || r.currentSong == nil {
		return nil, false
	}
	return r.currentSong.Audio, true
}

// IdleSince reports when the room last saw activity, and whether anybody is
// connected right now.
func (r *Room) IdleSince() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.connected() {
			return r.lastActive, true
		}
	}
	return r.lastActive, false
}

// Close stops the round task and any in-flight fetch, closes every player
// channel and releases the song source.
func (r *Room) Close() {
	r.cancel()

	r.mu.Lock()
	r.roundTask.Stop()
	r.roundTask = nil
	players := append([]*Player(nil), r.players...)
	r.mu.Unlock()

	for _, p := range players {
		if ch := p.attach(nil); ch != nil {
			_ = ch.Close()
		}
	}

	r.songs.Close()
}

func (r *Room) playerLocked(id PlayerID) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) sendAllLocked(msg any) {
	for _, p := range r.players {
		p.send(msg)
	}
}

func (r *Room) playerStateLocked() PlayerDataMessage {
	msg := PlayerDataMessage{
		State:   StatePlayerData,
		Payload: r.playerDataLocked(),
	}
	if len(r.players) > 0 {
		msg.Owner = r.players[0].ID
	}
	return msg
}

func (r *Room) playerDataLocked() []PlayerData {
	out := make([]PlayerData, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.data())
	}
	return out
}

// scoreboardLocked orders players by total points, keeping roster order for ties.
func (r *Room) scoreboardLocked() []ScoreboardPlayer {
	out := make([]ScoreboardPlayer, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.scoreboardEntry())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Points > out[j].Points
	})
	return out
}

// allConnectedLocked reports whether every roster player has a live channel.
func (r *Room) allConnectedLocked() bool {
	for _, p := range r.players {
		if !p.connected() {
			return false
		}
	}
	return true
}

// everyConnectedLocked reports whether pred holds for every connected
// player. Disconnected players are skipped, and a room with nobody connected
// never qualifies.
func (r *Room) everyConnectedLocked(pred func(*Player) bool) bool {
	seen := false
	for _, p := range r.players {
		if !p.connected() {
			continue
		}
		seen = true
		if !pred(p) {
			return false
		}
	}
	return seen
}

// resetGameLocked returns the room to the lobby.
func (r *Room) resetGameLocked() {
	for _, p := range r.players {
		p.resetGame()
	}
	r.roundTask.Stop()
	r.roundTask = nil
	r.currentRound = 0
	r.currentSong = nil
	r.roundStart = time.Time{}
	r.finalized = false
	r.state = Lobby
}
