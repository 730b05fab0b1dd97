/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	processStart = time.Now()
	lastID       atomic.Uint64
)

// PlayerID identifies a player for the lifetime of the process. It is handed
// out to browsers as the "user" cookie and used to find the roster entry again
// when the websocket connects.
type PlayerID uint64

// NewPlayerID derives an ID from the monotonic nanoseconds elapsed since the
// process started. IDs are strictly increasing, even for calls that land in
// the same clock tick.
func NewPlayerID() PlayerID {
	for {
		next := uint64(time.Since(processStart).Nanoseconds())
		last := lastID.Load()
		if next <= last {
			next = last + 1
		}
		if lastID.CompareAndSwap(last, next) {
			return PlayerID(next)
		}
	}
}

// ParsePlayerID parses the decimal form produced by String.
func ParsePlayerID(s string) (PlayerID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return PlayerID(v), nil
}

func (id PlayerID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON encodes the ID as a string, since browsers lose precision on
// 64-bit numbers.
func (id PlayerID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

func (id *PlayerID) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("player id %s: %w", data, err)
	}

	v, err := ParsePlayerID(s)
	if err != nil {
		return err
	}
	*id = v

	return nil
}
