/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlatPlaylist(t *testing.T) {
	listing := `{"_type": "url", "url": "https://www.youtube.com/watch?v=aaa", "title": "First"}

{"_type": "url", "url": "https://www.youtube.com/watch?v=bbb", "title": "[Private video]", "duration": null}
{"_type": "url", "url": "", "title": "Deleted"}
{"_type": "url", "url": "https://www.youtube.com/watch?v=ccc"}
`

	tracks, err := parseFlatPlaylist(strings.NewReader(listing))
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, Track{Title: "First", URL: "https://www.youtube.com/watch?v=aaa"}, tracks[0])
	assert.Equal(t, "[Private video]", tracks[1].Title)
}

func TestParseFlatPlaylistRejectsGarbage(t *testing.T) {
	_, err := parseFlatPlaylist(strings.NewReader("ERROR: unable to download\n"))
	assert.Error(t, err)
}

func TestFlatPlaylist(t *testing.T) {
	ctx := context.Background()
	pl := NewFlatPlaylist("road trip", []Track{{Title: "A", URL: "a"}, {Title: "B", URL: "b"}})

	assert.Equal(t, "road trip", pl.Name())
	assert.Equal(t, 2, pl.Len())

	track, err := pl.TrackAt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", track.Title)

	_, err = pl.TrackAt(ctx, 2)
	assert.Error(t, err)

	track, err = pl.Random(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string{"A", "B"}, track.Title)

	_, err = NewFlatPlaylist("empty", nil).Random(ctx)
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
}

func TestLoadFlatPlaylistMissingBinary(t *testing.T) {
	_, err := LoadFlatPlaylist(context.Background(), "/nonexistent/yt-dlp", "https://www.youtube.com/playlist?list=x")
	assert.Error(t, err)
}
