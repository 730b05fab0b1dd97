/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Bracket awards Bonus points to guesses made before Under has elapsed.
type Bracket struct {
	Under time.Duration
	Bonus int
}

// ScoreTable is the points policy for a correct guess.
type ScoreTable struct {
	Base           int
	Speed          []Bracket // ascending by Under
	SlowBonus      int       // when no speed bracket applies
	Order          []int     // bonus by number of earlier correct guessers
	PerHint        int       // per hint checkpoint not yet revealed
	MaxHintBonus   int
	SecondsPerHint int
}

// DefaultScoreTable mirrors the scoring used by the GuessTheSong community.
var DefaultScoreTable = ScoreTable{
	Base: 100,
	Speed: []Bracket{
		{Under: 10 * time.Second, Bonus: 125},
		{Under: 20 * time.Second, Bonus: 100},
		{Under: 25 * time.Second, Bonus: 75},
		{Under: 45 * time.Second, Bonus: 62},
		{Under: 70 * time.Second, Bonus: 50},
	},
	SlowBonus:      25,
	Order:          []int{200, 150, 100},
	PerHint:        25,
	MaxHintBonus:   100,
	SecondsPerHint: hintInterval,
}

// Points scores a correct guess made elapsed after the answer window opened.
func (t ScoreTable) Points(elapsed time.Duration, earlierGuessers, hintsLeft int) int {
	points := t.Base

	speed := t.SlowBonus
	for _, b := range t.Speed {
		if elapsed < b.Under {
			speed = b.Bonus
			break
		}
	}
	points += speed

	if earlierGuessers >= 0 && earlierGuessers < len(t.Order) {
		points += t.Order[earlierGuessers]
	}

	if hintsLeft > 0 {
		points += min(hintsLeft*t.PerHint, t.MaxHintBonus)
	}

	return points
}

// HintsLeft is the number of whole hint intervals remaining in the round.
func (t ScoreTable) HintsLeft(roundTime int, elapsed time.Duration) int {
	remaining := float64(roundTime) - elapsed.Seconds()
	if remaining <= 0 || t.SecondsPerHint <= 0 {
		return 0
	}
	return int(remaining / float64(t.SecondsPerHint))
}

func foldTitle(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// TitleMatches reports whether input names title, ignoring case and
// punctuation and allowing an edit distance of up to a tenth of the title.
func TitleMatches(title, input string) bool {
	t := foldTitle(title)
	in := foldTitle(input)
	if in == "" || t == "" {
		return false
	}

	return levenshtein.ComputeDistance(t, in) <= len([]rune(t))/10
}
