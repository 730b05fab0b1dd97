/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"fmt"
	"time"

	"github.com/Seednode/guessthesong/task"
)

// Connect attaches ch to the roster entry for id and pumps its messages into
// the room until the channel closes or ctx is done. Connections for players
// that never joined are closed straight away.
func (r *Room) Connect(ctx context.Context, id PlayerID, ch Channel) {
	stop := context.AfterFunc(ctx, func() { _ = ch.Close() })
	defer stop()

	log := r.log.With().Stringer("player", id).Logger()

	r.mu.Lock()
	p := r.playerLocked(id)
	if p == nil {
		r.mu.Unlock()
		log.Warn().Msg("no player with this id has joined")
		_ = ch.Close()
		return
	}

	old := p.attach(ch)
	r.lastActive = r.now()

	state := r.state
	switch state {
	case Lobby:
		roster := r.playerStateLocked()
		for _, other := range r.players {
			p.send(JoinMessage{State: StateJoin, Message: other.Name, Payload: roster})
		}
		for _, other := range r.players {
			if other != p {
				other.send(JoinMessage{State: StateJoin, Message: p.Name, Payload: roster})
			}
		}
	case WaitingForLoaded, RoundStarted:
		// The client resumes the audio it already has and will not
		// confirm loading again.
		p.loaded = true
		r.sendAllLocked(r.playerStateLocked())
		r.sendAllLocked(SimpleMessage{State: StateResumeAudio})
		r.startRoundIfReadyLocked()
	}
	r.mu.Unlock()

	// Closing a socket may wait on the network, so never under r.mu.
	if old != nil && old != ch {
		_ = old.Close()
	}

	log.Debug().Stringer("state", state).Msg("player connected")

	if state == WaitingForReconnect {
		r.beginGame()
	}

	for {
		msg, err := ch.Recv()
		if err != nil {
			break
		}
		r.handle(id, msg)
	}

	r.mu.Lock()
	if p.detach(ch) {
		r.lastActive = r.now()
		if r.state == WaitingForLoaded || r.state == RoundStarted {
			r.sendAllLocked(r.playerStateLocked())
		}
		// The player may have been the last one still loading.
		r.startRoundIfReadyLocked()
	}
	r.mu.Unlock()

	_ = ch.Close()

	log.Debug().Msg("player disconnected")
}

// handle applies one client message on behalf of player id.
func (r *Room) handle(id PlayerID, msg ClientMessage) {
	r.mu.Lock()

	p := r.playerLocked(id)
	if p == nil {
		r.mu.Unlock()
		r.log.Warn().Stringer("player", id).Str("type", msg.Type).Msg("message from player not on the roster")
		return
	}
	r.lastActive = r.now()

	if msg.Type == TypeSkipRound {
		r.mu.Unlock()
		r.skipRound()
		return
	}
	defer r.mu.Unlock()

	switch msg.Type {
	case TypeIncomingMsg:
		r.guessOrChatLocked(p, msg.Msg)

	case TypeStartGame:
		if r.state != Lobby {
			r.log.Debug().Stringer("state", r.state).Msg("ignoring start-game outside the lobby")
			return
		}
		r.sendAllLocked(SimpleMessage{State: StateStartGame})

		// Every client reloads into the game page; only sockets opened
		// after this point count as connected.
		for _, other := range r.players {
			other.attach(nil)
		}
		r.state = WaitingForReconnect
		r.log.Info().Msg("game started")

	case TypeAudioLoaded:
		if r.state != WaitingForLoaded {
			r.log.Debug().Stringer("state", r.state).Msg("ignoring audio-loaded")
			return
		}
		p.loaded = true
		r.startRoundIfReadyLocked()

	case TypeTypingStatus:
		r.sendAllLocked(PlayerTypingMessage{State: StatePlayerTyping, UUID: p.ID, Typing: *msg.Typing})

	case TypeStopGame:
		if r.state == Lobby {
			return
		}
		if r.fetching || (r.state == RoundStarted && r.finalized) {
			r.log.Debug().Stringer("state", r.state).Msg("stopping game while the next song is being fetched")
		}
		r.sendAllLocked(SimpleMessage{State: StateGameKilled})
		r.sendAllLocked(SimpleMessage{State: StateGameReload})
		r.resetGameLocked()
		r.log.Info().Str("by", p.Name).Msg("game stopped")

	case TypeEmoteReaction:
		r.sendAllLocked(EmoteReactionMessage{State: StateEmoteReaction, UUID: p.ID, Reaction: reactionGlyph(*msg.Reaction)})
	}
}

// guessOrChatLocked scores text as a guess, or relays it as chat. Anything
// matching the title is never relayed.
func (r *Room) guessOrChatLocked(p *Player, text string) {
	if r.currentSong != nil && TitleMatches(r.currentSong.Title, text) {
		if r.state == RoundStarted && !r.finalized && p.guessed == nil {
			points := r.pointsNowLocked()
			p.guessed = &points
			r.sendAllLocked(r.playerStateLocked())
			r.log.Debug().Str("player", p.Name).Int("points", points).Msg("correct guess")
		}
		return
	}

	r.sendAllLocked(ChatMessage{
		State:    StateChat,
		Type:     "message",
		Username: p.Name,
		UUID:     p.ID,
		Msg:      text,
	})
}

// beginGame fetches the first song once every player is back after the
// lobby reload.
func (r *Room) beginGame() {
	r.mu.Lock()
	if r.state != WaitingForReconnect || r.fetching || !r.allConnectedLocked() {
		r.mu.Unlock()
		return
	}
	r.fetching = true
	r.mu.Unlock()

	song, err := r.songs.Next(r.ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.fetching = false
	if r.state != WaitingForReconnect || r.ctx.Err() != nil {
		r.log.Debug().Stringer("state", r.state).Err(err).Msg("game no longer starting, discarding fetched song")
		return
	}
	if err != nil {
		r.abortGameLocked(err)
		return
	}

	r.currentSong = &song
	r.currentRound = 0
	for _, p := range r.players {
		p.resetRound()
	}
	r.sendAllLocked(SimpleMessage{State: StateNewTurn})
	r.sendAllLocked(SimpleMessage{State: StateLoading})
	r.state = WaitingForLoaded
}

// startRoundIfReadyLocked launches the round task once every connected
// player has the song loaded.
func (r *Room) startRoundIfReadyLocked() {
	if r.state != WaitingForLoaded {
		return
	}
	if !r.everyConnectedLocked(func(p *Player) bool { return p.loaded }) {
		return
	}

	r.roundTask.Stop()
	r.finalized = false
	r.roundStart = time.Time{}
	r.state = RoundStarted
	r.roundTask = task.Spawn(r.ctx, r.playRound)

	r.log.Debug().Int("round", r.currentRound+1).Msg("round started")
}

// abortGameLocked ends a running game because no song could be supplied.
func (r *Room) abortGameLocked(err error) {
	r.log.Error().Err(err).Msg("failed to fetch song, ending game")

	r.sendAllLocked(NotifyMessage{State: StateNotify, Message: fmt.Sprintf("Could not load the next song: %v", err)})
	r.sendAllLocked(SimpleMessage{State: StateGameEnded})
	r.resetGameLocked()
}
