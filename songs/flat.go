/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os/exec"
	"strings"
)

type flatEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// FlatPlaylist is a fully resolved list of tracks, as listed by yt-dlp's
// --flat-playlist mode.
type FlatPlaylist struct {
	name   string
	tracks []Track
}

func NewFlatPlaylist(name string, tracks []Track) *FlatPlaylist {
	return &FlatPlaylist{name: name, tracks: tracks}
}

// LoadFlatPlaylist lists the playlist at url with the yt-dlp binary.
func LoadFlatPlaylist(ctx context.Context, ytdlp, url string) (*FlatPlaylist, error) {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, ytdlp, "--dump-json", "--flat-playlist", url)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list playlist %s: %w: %s", url, err, strings.TrimSpace(stderr.String()))
	}

	tracks, err := parseFlatPlaylist(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("list playlist %s: %w", url, ErrEmptyPlaylist)
	}

	return NewFlatPlaylist(url, tracks), nil
}

// parseFlatPlaylist reads one JSON object per line. Entries without a URL or
// title cannot be played and are skipped.
func parseFlatPlaylist(r io.Reader) ([]Track, error) {
	var tracks []Track

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var e flatEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parse playlist entry: %w", err)
		}
		if e.URL == "" || e.Title == "" {
			continue
		}

		tracks = append(tracks, Track{Title: e.Title, URL: e.URL})
	}

	return tracks, scanner.Err()
}

func (f *FlatPlaylist) Name() string {
	return f.name
}

func (f *FlatPlaylist) Len() int {
	return len(f.tracks)
}

func (f *FlatPlaylist) TrackAt(_ context.Context, i int) (Track, error) {
	if i < 0 || i >= len(f.tracks) {
		return Track{}, fmt.Errorf("track index %d out of range [0, %d)", i, len(f.tracks))
	}
	return f.tracks[i], nil
}

func (f *FlatPlaylist) Random(ctx context.Context) (Track, error) {
	if len(f.tracks) == 0 {
		return Track{}, ErrEmptyPlaylist
	}
	return f.TrackAt(ctx, rand.IntN(len(f.tracks)))
}
