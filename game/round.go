/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"time"

	"github.com/Seednode/guessthesong/task"
)

// countdownGrace is the number of ticks shown before the answer window opens.
const countdownGrace = 3

// playRound is the body of the round task: hint reveal, countdown and then
// finalization. It returns without touching the room once ctx is cancelled.
func (r *Room) playRound(ctx context.Context) {
	r.mu.Lock()
	if ctx.Err() != nil || r.currentSong == nil {
		r.mu.Unlock()
		return
	}
	roundTime := r.settings.RoundTime
	hints := NewHints(r.currentSong.Title, roundTime)
	r.sendAllLocked(r.playerStateLocked())
	r.mu.Unlock()

	if !task.Sleep(ctx, r.settings.Warmup) {
		return
	}

	for timer := roundTime + countdownGrace; timer >= 0; timer-- {
		if !task.Sleep(ctx, r.settings.Tick) {
			return
		}

		r.mu.Lock()
		if ctx.Err() != nil {
			r.mu.Unlock()
			return
		}

		if r.everyConnectedLocked(func(p *Player) bool { return p.guessed != nil }) {
			r.mu.Unlock()
			break
		}

		r.sendAllLocked(TimerMessage{
			State:     StateTimer,
			Message:   timer,
			Hint:      hints.HintAt(timer),
			Scores:    r.playerDataLocked(),
			RoundTime: roundTime,
		})

		if timer == roundTime {
			r.roundStart = r.now()
		}
		r.mu.Unlock()
	}

	r.finalizeRound(ctx)
}

// skipRound cancels the running round task and finalizes the round in its
// place.
func (r *Room) skipRound() {
	r.mu.Lock()
	if r.state != RoundStarted || r.finalized {
		r.mu.Unlock()
		return
	}
	r.roundTask.Stop()
	r.roundTask = nil
	r.mu.Unlock()

	r.log.Info().Int("round", r.currentRound+1).Msg("round skipped")

	r.finalizeRound(r.ctx)
}

// finalizeRound scores the current round, shows the scoreboard and either
// ends the game or prepares the next song. Only the first caller for a given
// round does anything.
func (r *Room) finalizeRound(ctx context.Context) {
	r.mu.Lock()
	if ctx.Err() != nil || r.state != RoundStarted || r.finalized {
		r.mu.Unlock()
		return
	}
	r.finalized = true

	for _, p := range r.players {
		if p.guessed != nil {
			p.points += *p.guessed
			p.streak++
		} else {
			p.streak = 0
		}
	}

	kept := r.players[:0]
	for _, p := range r.players {
		if p.connected() {
			kept = append(kept, p)
			continue
		}
		r.log.Info().Str("player", p.Name).Msg("removing disconnected player")
	}
	clear(r.players[len(kept):])
	r.players = kept

	if r.currentSong != nil {
		r.sendAllLocked(NotifyMessage{State: StateNotify, Message: "The song was: " + r.currentSong.Title})
	}
	r.sendAllLocked(ScoreboardMessage{
		State:     StateScoreboard,
		Payload:   r.scoreboardLocked(),
		Round:     r.currentRound + 1,
		MaxRounds: r.settings.Rounds,
	})

	r.currentRound++
	if r.currentRound >= r.settings.Rounds {
		r.sendAllLocked(SimpleMessage{State: StateGameEnded})
		r.resetGameLocked()
		r.mu.Unlock()
		r.log.Info().Msg("game ended")
		return
	}
	r.mu.Unlock()

	song, err := r.songs.Next(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil || r.state != RoundStarted || !r.finalized {
		r.log.Debug().Stringer("state", r.state).Err(err).Msg("round no longer current, discarding fetched song")
		return
	}
	if err != nil {
		r.abortGameLocked(err)
		return
	}

	r.currentSong = &song
	for _, p := range r.players {
		p.resetRound()
	}
	r.roundTask = nil
	r.roundStart = time.Time{}
	r.sendAllLocked(SimpleMessage{State: StateNewTurn})
	r.state = WaitingForLoaded
}

// pointsNowLocked scores a correct guess made at this instant. Guesses during
// the grace ticks count as instant.
func (r *Room) pointsNowLocked() int {
	var elapsed time.Duration
	if !r.roundStart.IsZero() {
		elapsed = max(r.now().Sub(r.roundStart), 0)
	}

	earlier := 0
	for _, p := range r.players {
		if p.guessed != nil {
			earlier++
		}
	}

	return r.scores.Points(elapsed, earlier, r.scores.HintsLeft(r.settings.RoundTime, elapsed))
}
