/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

const robots = `User-agent: Amazonbot
Disallow: /

User-agent: Applebot-Extended
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /

User-agent: Google-Extended
Disallow: /

User-agent: GPTBot
Disallow: /

User-agent: meta-externalagent
Disallow: /`

// serveText writes a small plain text body with the usual headers.
func serveText(cfg *Config, body string, cache bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if cache {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		securityHeaders(cfg, w)

		_, _ = io.WriteString(w, body)
	}
}

func serveHomePage(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = io.WriteString(w, newPage("Guess The Song", fmt.Sprintf("%d rooms open", len(rm.list()))))
	}
}

func serveJoinPage(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := roomFromParams(rm, ps)
		if !ok {
			http.Redirect(w, r, cfg.prefix+"/server-browser", http.StatusFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = io.WriteString(w, newPage("Join "+room.Listing().Name, fmt.Sprintf("Join room %d", room.Code)))
	}
}

func serveServerBrowser(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = io.WriteString(w, newPage("Server Browser", "Open rooms are listed live over "+cfg.prefix+"/server-browser/ws"))
	}
}

func registerPages(cfg *Config, mux *httprouter.Router, rm *RoomManager) {
	mux.GET(cfg.prefix+"/", serveHomePage(cfg, rm))
	mux.GET(cfg.prefix+"/join/:room", serveJoinPage(cfg, rm))
	mux.GET(cfg.prefix+"/server-browser", serveServerBrowser(cfg))
	mux.GET(cfg.prefix+"/healthz", serveText(cfg, "Ok\n", false))
	mux.GET(cfg.prefix+"/robots.txt", serveText(cfg, robots, true))
	mux.GET(cfg.prefix+"/version", serveText(cfg, "guessthesong v"+releaseVersion+"\n", false))
}
