/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package songs supplies the songs played in a room: playlist sources,
// audio download and a prefetching Supplier.
package songs

import (
	"context"
	"errors"
)

var (
	ErrClosed        = errors.New("supplier closed")
	ErrEmptyPlaylist = errors.New("playlist is empty")
	ErrUnplayable    = errors.New("track is not playable")
)

// Song is a title and its audio, ready to be played.
type Song struct {
	Title string
	Audio []byte
}

// Track describes a song before its audio is fetched. URL is empty for
// catalog tracks that have to be searched for.
type Track struct {
	Artists []string
	Title   string
	URL     string
}

// Source is a playlist that can pick a track uniformly at random.
type Source interface {
	Name() string
	Random(ctx context.Context) (Track, error)
}

// Indexed is a Source with a stable length whose tracks can be addressed by
// position. The Supplier uses it to play every track once before repeating.
type Indexed interface {
	Source
	Len() int
	TrackAt(ctx context.Context, i int) (Track, error)
}

// Downloader turns a track into audio bytes.
type Downloader interface {
	Download(ctx context.Context, t Track) ([]byte, error)
}
