/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Seednode/guessthesong/game"
	"github.com/julienschmidt/httprouter"
)

func humanReadableSize(bytes int) string {
	const unit = 1000

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "kMGTPE"[exp])
}

// serveSong hands the current round's audio to a member of the room. The
// nonce segment only defeats client caches between rounds.
func serveSong(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		room, ok := roomFromParams(rm, ps)
		if !ok {
			http.NotFound(w, r)
			return
		}

		id, err := game.ParsePlayerID(ps.ByName("player"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		audio, ok := room.Audio(id)
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(audio)
		if err != nil {
			rm.log.Debug().Err(err).Uint32("room", room.Code).Msg("song transfer aborted")
			return
		}

		rm.log.Debug().
			Uint32("room", room.Code).
			Stringer("player", id).
			Str("size", humanReadableSize(written)).
			Str("ip", realIP(r)).
			Dur("took", time.Since(startTime).Round(time.Microsecond)).
			Msg("served song")
	}
}
