/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"
)

// PageFetcher loads one page of a remote playlist.
type PageFetcher interface {
	FetchPage(ctx context.Context, offset, limit int) ([]Track, error)
}

// Catalog is a remote playlist with a known length whose pages are fetched
// on first use and kept, so a track is downloaded from the provider at most
// once.
type Catalog struct {
	name     string
	pageSize int
	fetcher  PageFetcher
	log      zerolog.Logger

	mu     sync.Mutex
	tracks []*Track
}

// NewCatalog creates an empty cache for total tracks, fetched pageSize at a
// time.
func NewCatalog(name string, total, pageSize int, fetcher PageFetcher, logger zerolog.Logger) *Catalog {
	return &Catalog{
		name:     name,
		pageSize: max(pageSize, 1),
		fetcher:  fetcher,
		log:      logger,
		tracks:   make([]*Track, max(total, 0)),
	}
}

func (c *Catalog) Name() string {
	return c.name
}

func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Insert caches tracks starting at offset. Entries past the end are ignored.
func (c *Catalog) Insert(offset int, tracks []Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.insertLocked(offset, tracks)
}

func (c *Catalog) insertLocked(offset int, tracks []Track) {
	for i := range tracks {
		slot := offset + i
		if slot < 0 || slot >= len(c.tracks) {
			continue
		}
		t := tracks[i]
		c.tracks[slot] = &t
	}
}

// Cached reports how many tracks are held locally.
func (c *Catalog) Cached() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.tracks {
		if t != nil {
			n++
		}
	}
	return n
}

// TrackAt returns track i, fetching the page that contains it if needed.
func (c *Catalog) TrackAt(ctx context.Context, i int) (Track, error) {
	if i < 0 || i >= len(c.tracks) {
		return Track{}, fmt.Errorf("track index %d out of range [0, %d)", i, len(c.tracks))
	}

	c.mu.Lock()
	cached := c.tracks[i]
	c.mu.Unlock()

	if cached != nil {
		c.log.Debug().Int("index", i).Msg("track already cached")
		return playable(*cached)
	}

	start := i / c.pageSize * c.pageSize
	c.log.Debug().Int("index", i).Int("from", start).Int("to", start+c.pageSize).Str("playlist", c.name).Msg("fetching playlist page")

	page, err := c.fetcher.FetchPage(ctx, start, c.pageSize)
	if err != nil {
		return Track{}, fmt.Errorf("fetch tracks %d-%d of %q: %w", start, start+c.pageSize, c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.insertLocked(start, page)
	if c.tracks[i] == nil {
		return Track{}, fmt.Errorf("track %d missing from fetched page: %w", i, ErrUnplayable)
	}

	return playable(*c.tracks[i])
}

func (c *Catalog) Random(ctx context.Context) (Track, error) {
	if len(c.tracks) == 0 {
		return Track{}, ErrEmptyPlaylist
	}
	return c.TrackAt(ctx, rand.IntN(len(c.tracks)))
}

func playable(t Track) (Track, error) {
	if t.Title == "" {
		return Track{}, ErrUnplayable
	}
	return t, nil
}
