/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"errors"
	"fmt"
)

// Inbound message types, as sent by the browser client.
const (
	TypeIncomingMsg   = "incoming-msg"
	TypeStartGame     = "start-game"
	TypeAudioLoaded   = "audio-loaded"
	TypeTypingStatus  = "typing-status"
	TypeSkipRound     = "skip-round"
	TypeStopGame      = "stop-game"
	TypeEmoteReaction = "emote-reaction"
)

// Outbound message states.
const (
	StateFetchNew      = "fetch_new"
	StateJoin          = "join"
	StatePlayerData    = "player_data"
	StateChat          = "chat"
	StateLoading       = "loading"
	StateTimer         = "timer"
	StatePlayerTyping  = "playerTyping"
	StateNotify        = "notify"
	StateNewTurn       = "new_turn"
	StateScoreboard    = "scoreboard"
	StateStartGame     = "start_game"
	StateGameEnded     = "game_ended"
	StateGameKilled    = "game-killed"
	StateGameReload    = "game_reload"
	StateResumeAudio   = "resume_audio"
	StateEmoteReaction = "emoteReaction"
)

var errMissingField = errors.New("missing field")

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // one of the Type* constants
	Msg      string `json:"msg,omitempty"`      // incoming-msg
	Typing   *bool  `json:"typing,omitempty"`   // typing-status
	Reaction *int   `json:"reaction,omitempty"` // emote-reaction
}

func (m ClientMessage) validate() error {
	switch m.Type {
	case TypeStartGame, TypeAudioLoaded, TypeSkipRound, TypeStopGame:
		return nil
	case TypeIncomingMsg:
		if m.Msg == "" {
			return fmt.Errorf("%s: %w: msg", m.Type, errMissingField)
		}
		return nil
	case TypeTypingStatus:
		if m.Typing == nil {
			return fmt.Errorf("%s: %w: typing", m.Type, errMissingField)
		}
		return nil
	case TypeEmoteReaction:
		if m.Reaction == nil {
			return fmt.Errorf("%s: %w: reaction", m.Type, errMissingField)
		}
		return nil
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
}

// SimpleMessage carries no payload beyond its state, e.g. "loading" or "new_turn".
type SimpleMessage struct {
	State string `json:"state"`
}

// PlayerData is one roster entry as rendered by the client.
type PlayerData struct {
	UUID         PlayerID `json:"uuid"`
	Username     string   `json:"username"`
	Points       int      `json:"points"`      // includes points gained this round
	PrevPoints   int      `json:"prev_points"` // total before this round
	Streak       int      `json:"streak"`
	Emoji        string   `json:"emoji"`
	Loaded       bool     `json:"loaded"`
	Guessed      bool     `json:"guessed"`
	Disconnected bool     `json:"disconnected"`
}

type PlayerDataMessage struct {
	State   string       `json:"state"` // "player_data"
	Payload []PlayerData `json:"payload"`
	Owner   PlayerID     `json:"owner"`
}

// JoinMessage announces a player by name, along with the full roster.
type JoinMessage struct {
	State   string            `json:"state"` // "join"
	Message string            `json:"message"`
	Payload PlayerDataMessage `json:"payload"`
}

type ChatMessage struct {
	State    string   `json:"state"` // "chat"
	Type     string   `json:"type"`  // "message"
	Username string   `json:"username"`
	UUID     PlayerID `json:"uuid"`
	Msg      string   `json:"msg"`
}

// TimerMessage is sent once per countdown tick.
type TimerMessage struct {
	State     string       `json:"state"`   // "timer"
	Message   int          `json:"message"` // seconds remaining
	Hint      string       `json:"hint"`
	Scores    []PlayerData `json:"scores"`
	RoundTime int          `json:"round_time"`
}

type PlayerTypingMessage struct {
	State  string   `json:"state"` // "playerTyping"
	UUID   PlayerID `json:"uuid"`
	Typing bool     `json:"typing"`
}

type NotifyMessage struct {
	State   string `json:"state"` // "notify"
	Message string `json:"message"`
}

type ScoreboardPlayer struct {
	UUID        PlayerID `json:"uuid"`
	DisplayName string   `json:"display_name"`
	Points      int      `json:"points"`
	PointDiff   int      `json:"point_diff"`
	Streak      int      `json:"streak"`
}

type ScoreboardMessage struct {
	State     string             `json:"state"` // "scoreboard"
	Payload   []ScoreboardPlayer `json:"payload"`
	Round     int                `json:"round"`
	MaxRounds int                `json:"max_rounds"`
}

type EmoteReactionMessage struct {
	State    string   `json:"state"` // "emoteReaction"
	UUID     PlayerID `json:"uuid"`
	Reaction string   `json:"reaction"`
}

// ListedRoom is one entry in the room browser feed.
type ListedRoom struct {
	Code     uint32 `json:"code"`
	GameMode string `json:"game_mode"`
	Idle     uint64 `json:"idle"` // seconds since creation
	Name     string `json:"name"`
	Players  int    `json:"players"`
	Status   string `json:"status"` // "Private" or "Public"
	Theme    string `json:"theme"`
}

type FetchNewMessage struct {
	State string       `json:"state"` // "fetch_new"
	Rooms []ListedRoom `json:"msg"`
}

var reactionGlyphs = []string{"👍", "👎", "🙌", "🤘"}

// reactionGlyph maps a client reaction index to the emoji broadcast to the room.
func reactionGlyph(i int) string {
	if i < 0 || i >= len(reactionGlyphs) {
		return "❓"
	}
	return reactionGlyphs[i]
}
