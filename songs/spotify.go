/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// spotifyPageSize is the largest page the playlist items endpoint returns.
const spotifyPageSize = 50

type spotifyPages struct {
	client *spotify.Client
	id     spotify.ID
}

func (p spotifyPages) FetchPage(ctx context.Context, offset, limit int) ([]Track, error) {
	page, err := p.client.GetPlaylistTracks(ctx, p.id, spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, err
	}
	return spotifyTracks(page.Tracks), nil
}

// spotifyTracks keeps positions aligned with the playlist. Episodes and local
// files come back without a name and are left untitled, i.e. unplayable.
func spotifyTracks(items []spotify.PlaylistTrack) []Track {
	tracks := make([]Track, len(items))
	for i, item := range items {
		artists := make([]string, 0, len(item.Track.Artists))
		for _, a := range item.Track.Artists {
			artists = append(artists, a.Name)
		}
		tracks[i] = Track{Artists: artists, Title: item.Track.Name}
	}
	return tracks
}

// ParseSpotifyPlaylistID accepts a bare playlist ID, a spotify:playlist: URI
// or an open.spotify.com link.
func ParseSpotifyPlaylistID(s string) (string, error) {
	s = strings.TrimSpace(s)

	if rest, ok := strings.CutPrefix(s, "spotify:playlist:"); ok {
		s = rest
	} else if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("parse playlist url: %w", err)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 || parts[len(parts)-2] != "playlist" {
			return "", fmt.Errorf("not a spotify playlist url: %s", s)
		}
		s = parts[len(parts)-1]
	}

	if s == "" || strings.ContainsAny(s, "/?:& ") {
		return "", fmt.Errorf("invalid spotify playlist id %q", s)
	}

	return s, nil
}

// NewSpotifyCatalog resolves a Spotify playlist with the client credentials
// flow. The first page arrives with the playlist itself; the rest is fetched
// as tracks are drawn.
func NewSpotifyCatalog(ctx context.Context, clientID, clientSecret, playlist string, logger zerolog.Logger) (*Catalog, error) {
	id, err := ParseSpotifyPlaylistID(playlist)
	if err != nil {
		return nil, err
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	// Pages are fetched long after this request is gone, and the token
	// source has to keep renewing the token for them.
	client := spotify.New(config.Client(context.WithoutCancel(ctx)))

	full, err := client.GetPlaylist(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("spotify playlist %s: %w", id, err)
	}
	if full.Tracks.Total == 0 {
		return nil, fmt.Errorf("spotify playlist %s: %w", id, ErrEmptyPlaylist)
	}

	c := NewCatalog(full.Name, int(full.Tracks.Total), spotifyPageSize, spotifyPages{client: client, id: spotify.ID(id)}, logger)
	c.Insert(int(full.Tracks.Offset), spotifyTracks(full.Tracks.Tracks))

	return c, nil
}
