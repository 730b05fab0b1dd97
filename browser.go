/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"time"

	"github.com/Seednode/guessthesong/game"
	"github.com/julienschmidt/httprouter"
)

const browserInterval = 5 * time.Second

// serveBrowser pushes the room list to a server browser until it hangs up.
func serveBrowser(rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			rm.log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		ch := game.NewWSChannel(conn, rm.log.With().Str("feed", "browser").Logger())
		defer ch.Close()

		// Nothing is expected from the browser, but reading is how a hangup
		// is noticed.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, err := ch.Recv(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(browserInterval)
		defer ticker.Stop()

		for {
			if err := ch.Send(game.FetchNewMessage{State: game.StateFetchNew, Rooms: rm.list()}); err != nil {
				return
			}

			select {
			case <-gone:
				return
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}
