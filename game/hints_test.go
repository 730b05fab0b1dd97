/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hidden(hint string) int {
	return strings.Count(hint, string(hintBlank))
}

func TestHintsRevealMonotonically(t *testing.T) {
	const title = "Hello World"

	h := NewHints(title, 75)
	require.Equal(t, 7, h.Checkpoints())

	previous := h.HintAt(78)
	assert.Equal(t, "_____ _____", previous)

	for timer := 77; timer >= 0; timer-- {
		hint := h.HintAt(timer)
		require.Len(t, []rune(hint), len([]rune(title)))
		require.LessOrEqual(t, hidden(hint), hidden(previous), "timer %d hid letters again", timer)

		for i, r := range []rune(hint) {
			if r != hintBlank {
				require.Equal(t, []rune(title)[i], r)
			}
		}
		previous = hint
	}

	assert.Zero(t, h.Checkpoints())
	assert.Equal(t, 5, hidden(previous), "half the letters stay hidden")
}

func TestHintsCatchUp(t *testing.T) {
	h := NewHints("Bohemian Rhapsody", 60)
	require.Equal(t, 6, h.Checkpoints())

	h.HintAt(35)
	assert.Equal(t, 3, h.Checkpoints())
}

func TestHintsShortRound(t *testing.T) {
	h := NewHints("Hey Jude", 9)

	assert.Zero(t, h.Checkpoints())
	assert.Equal(t, "___ ____", h.HintAt(0))
}

func TestHintsKeepPunctuation(t *testing.T) {
	h := NewHints("Don't Stop!", 30)

	hint := h.HintAt(100)
	assert.Equal(t, "___'_ ____!", hint)
}
