/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/guessthesong/game"
	"github.com/Seednode/guessthesong/songs"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const (
	playerCookieName = "user"
	emojiCookieName  = "emoji"
)

var emojis = []string{"😀", "😎", "🤠", "🥳", "🤖", "👻", "🐸", "🦊", "🐼", "🐙", "🦄", "🎸"}

var errTooManyRooms = errors.New("room limit reached")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// sourceFunc resolves a playlist reference into a song source for a new room.
type sourceFunc func(ctx context.Context, playlist string) (game.SongSource, error)

// RoomManager holds every live room, keyed by its numeric code.
type RoomManager struct {
	mu          sync.Mutex
	rooms       map[uint32]*game.Room
	maxRooms    int
	idleTimeout time.Duration
	newSource   sourceFunc
	log         zerolog.Logger
}

func newRoomManager(cfg *Config, newSource sourceFunc, logger zerolog.Logger) *RoomManager {
	return &RoomManager{
		rooms:       make(map[uint32]*game.Room),
		maxRooms:    cfg.maxRooms,
		idleTimeout: cfg.sessionTimeout,
		newSource:   newSource,
		log:         logger,
	}
}

func (rm *RoomManager) get(code uint32) (*game.Room, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[code]
	return room, ok
}

// add registers a new room under the next free code, one past the highest
// code in use.
func (rm *RoomManager) add(settings game.Settings, source game.SongSource) (*game.Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.rooms) >= rm.maxRooms {
		return nil, errTooManyRooms
	}

	var code uint32
	for c := range rm.rooms {
		code = max(code, c)
	}
	code++

	room := game.NewRoom(code, settings, source, rm.log)
	rm.rooms[code] = room

	rm.log.Info().Uint32("room", code).Str("name", settings.Name).Str("theme", source.Name()).Msg("room created")

	return room, nil
}

func (rm *RoomManager) list() []game.ListedRoom {
	rm.mu.Lock()
	rooms := make([]*game.Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.mu.Unlock()

	listed := make([]game.ListedRoom, 0, len(rooms))
	for _, room := range rooms {
		listed = append(listed, room.Listing())
	}
	slices.SortFunc(listed, func(a, b game.ListedRoom) int {
		return int(a.Code) - int(b.Code)
	})

	return listed
}

// reap closes rooms nobody has been connected to since cutoff.
func (rm *RoomManager) reap(cutoff time.Time) int {
	var idle []*game.Room

	rm.mu.Lock()
	for code, room := range rm.rooms {
		last, connected := room.IdleSince()
		if !connected && last.Before(cutoff) {
			delete(rm.rooms, code)
			idle = append(idle, room)
		}
	}
	rm.mu.Unlock()

	for _, room := range idle {
		rm.log.Info().Uint32("room", room.Code).Msg("closing idle room")
		room.Close()
	}

	return len(idle)
}

func (rm *RoomManager) reaperLoop(ctx context.Context) {
	if rm.idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(rm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.reap(time.Now().Add(-rm.idleTimeout))
		}
	}
}

func (rm *RoomManager) closeAll() {
	rm.mu.Lock()
	rooms := rm.rooms
	rm.rooms = make(map[uint32]*game.Room)
	rm.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
}

// newSongSource builds the production source for a playlist reference:
// YouTube playlists are listed with yt-dlp, anything else is looked up on
// Spotify when credentials are configured.
func newSongSource(cfg *Config, logger zerolog.Logger) sourceFunc {
	return func(ctx context.Context, playlist string) (game.SongSource, error) {
		var (
			source songs.Source
			err    error
		)

		switch {
		case strings.Contains(playlist, "youtube.com/") || strings.Contains(playlist, "youtu.be/"):
			source, err = songs.LoadFlatPlaylist(ctx, cfg.ytdlp, playlist)
		case cfg.spotifyEnabled():
			source, err = songs.NewSpotifyCatalog(ctx, cfg.spotifyID, cfg.spotifySecret, playlist, logger)
		default:
			err = fmt.Errorf("unsupported playlist %q", playlist)
		}
		if err != nil {
			return nil, err
		}

		return songs.NewSupplier(source, songs.YtDlp{Path: cfg.ytdlp}, logger), nil
	}
}

func playerFromCookie(r *http.Request) (game.PlayerID, bool) {
	c, err := r.Cookie(playerCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}

	id, err := game.ParsePlayerID(c.Value)
	if err != nil {
		return 0, false
	}

	return id, true
}

func setPlayerCookie(w http.ResponseWriter, id game.PlayerID) {
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// emojiFromCookie maps the picker's index cookie onto an avatar, falling
// back to a random one.
func emojiFromCookie(r *http.Request) string {
	if c, err := r.Cookie(emojiCookieName); err == nil {
		if i, err := strconv.Atoi(c.Value); err == nil && i >= 0 && i < len(emojis) {
			return emojis[i]
		}
	}

	return emojis[rand.IntN(len(emojis))]
}

func roomFromParams(rm *RoomManager, ps httprouter.Params) (*game.Room, bool) {
	code, err := strconv.ParseUint(ps.ByName("room"), 10, 32)
	if err != nil {
		return nil, false
	}

	return rm.get(uint32(code))
}

func formInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.PostFormValue(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func serveCreateRoom(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(cfg, w)

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		playlist := strings.TrimSpace(r.PostFormValue("playlist"))
		if playlist == "" {
			http.Error(w, "missing playlist", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
		defer cancel()

		source, err := rm.newSource(ctx, playlist)
		if err != nil {
			rm.log.Error().Err(err).Str("playlist", playlist).Msg("could not resolve playlist")

			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, newPage("Playlist Error", "Could not load that playlist. Please try another."))
			return
		}

		roundTime := formInt(r, "round_time", int(cfg.roundTime.Seconds()))
		if roundTime < 10 {
			roundTime = 10
		}

		room, err := rm.add(game.Settings{
			Name:      r.PostFormValue("room_name"),
			Password:  r.PostFormValue("password"),
			Rounds:    formInt(r, "rounds", cfg.rounds),
			RoundTime: roundTime,
			Warmup:    cfg.warmup,
		}, source)
		if err != nil {
			source.Close()
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		id := room.Join(r.PostFormValue("username"), emojiFromCookie(r))
		setPlayerCookie(w, id)

		http.Redirect(w, r, fmt.Sprintf("%s/room/%d", cfg.prefix, room.Code), http.StatusFound)
	}
}

func serveJoinRoom(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(cfg, w)

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		code, err := strconv.ParseUint(r.PostFormValue("room_code"), 10, 32)
		if err != nil {
			http.Redirect(w, r, cfg.prefix+"/server-browser", http.StatusFound)
			return
		}

		room, ok := rm.get(uint32(code))
		if !ok {
			http.Redirect(w, r, cfg.prefix+"/server-browser", http.StatusFound)
			return
		}

		if !room.CheckPassword(r.PostFormValue("password")) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, newPage("Wrong Password", "That password is not correct."))
			return
		}

		id := room.Join(r.PostFormValue("username"), emojiFromCookie(r))
		setPlayerCookie(w, id)

		http.Redirect(w, r, fmt.Sprintf("%s/room/%d", cfg.prefix, room.Code), http.StatusFound)
	}
}

// serveRoom checks the caller's identity before handing over to the client
// page, sending strangers through the join flow.
func serveRoom(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := roomFromParams(rm, ps)
		if !ok {
			http.Redirect(w, r, cfg.prefix+"/server-browser", http.StatusFound)
			return
		}

		id, ok := playerFromCookie(r)
		if !ok || !room.HasPlayer(id) {
			http.Redirect(w, r, fmt.Sprintf("%s/join/%d", cfg.prefix, room.Code), http.StatusFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		listing := room.Listing()
		_, _ = io.WriteString(w, newPage(listing.Name, fmt.Sprintf("Room %d: %s", room.Code, room.State())))
	}
}

func serveRoomWS(rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := roomFromParams(rm, ps)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		id, ok := playerFromCookie(r)
		if !ok {
			http.Error(w, "missing player id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			rm.log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		log := rm.log.With().Uint32("room", room.Code).Stringer("player", id).Logger()

		room.Connect(r.Context(), id, game.NewWSChannel(conn, log))
	}
}

func registerRooms(cfg *Config, mux *httprouter.Router, rm *RoomManager) {
	mux.POST(cfg.prefix+"/create-room", serveCreateRoom(cfg, rm))
	mux.POST(cfg.prefix+"/join", serveJoinRoom(cfg, rm))
	mux.GET(cfg.prefix+"/room/:room", serveRoom(cfg, rm))
	mux.GET(cfg.prefix+"/room/:room/ws", serveRoomWS(rm))
	mux.GET(cfg.prefix+"/room/:room/qr", serveQR(cfg))
	mux.GET(cfg.prefix+"/song/:player/:room/:nonce", serveSong(cfg, rm))
	mux.GET(cfg.prefix+"/server-browser/ws", serveBrowser(rm))
}
