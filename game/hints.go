/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"math/rand/v2"
	"unicode"
)

const (
	hintInterval   = 10
	maxHintSeconds = 70
	hintBlank      = '_'
)

type checkpoint struct {
	at   int
	hint string
}

// Hints reveals a song title progressively over one round. Checkpoints sit on
// every 10 second mark from min(roundTime, 70) down to 10; at each one another
// batch of letters is uncovered, until half of them are visible.
//
// HintAt must be called with strictly decreasing countdown values.
type Hints struct {
	current string
	pending []checkpoint
}

// NewHints precomputes every checkpoint for title.
func NewHints(title string, roundTime int) *Hints {
	var marks []int
	for at := min(roundTime, maxHintSeconds) / hintInterval * hintInterval; at >= hintInterval; at -= hintInterval {
		marks = append(marks, at)
	}

	blanked, hints := generateHints(title, len(marks))

	h := &Hints{current: blanked}
	for i, at := range marks {
		h.pending = append(h.pending, checkpoint{at: at, hint: hints[i]})
	}

	return h
}

// HintAt returns the most revealing hint whose checkpoint is at or above timer.
func (h *Hints) HintAt(timer int) string {
	for len(h.pending) > 0 && h.pending[0].at >= timer {
		h.current = h.pending[0].hint
		h.pending = h.pending[1:]
	}
	return h.current
}

// Checkpoints reports how many reveals are still to come.
func (h *Hints) Checkpoints() int {
	return len(h.pending)
}

func generateHints(title string, steps int) (string, []string) {
	runes := []rune(title)

	hidden := make(map[int]bool)
	var order []int
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			hidden[i] = true
			order = append(order, i)
		}
	}

	blankOut := func() string {
		out := make([]rune, len(runes))
		for i, r := range runes {
			if hidden[i] {
				out[i] = hintBlank
			} else {
				out[i] = r
			}
		}
		return string(out)
	}

	allBlank := blankOut()
	if steps == 0 {
		return allBlank, nil
	}

	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	total := float64(len(order))
	perStep := total / 2 / float64(steps)
	stillHidden := total

	hints := make([]string, 0, steps)
	for range steps {
		stillHidden -= perStep
		for float64(len(hidden)) > stillHidden+1e-9 {
			delete(hidden, order[0])
			order = order[1:]
		}
		hints = append(hints, blankOut())
	}

	return allBlank, hints
}
