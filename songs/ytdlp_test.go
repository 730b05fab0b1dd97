/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadArgs(t *testing.T) {
	direct := downloadArgs(Track{Title: "Song", URL: "https://www.youtube.com/watch?v=aaa"})
	assert.Equal(t, []string{"-x", "-o", "-", "https://www.youtube.com/watch?v=aaa"}, direct)

	search := downloadArgs(Track{Title: "Hey Jude", Artists: []string{"The Beatles"}})
	assert.Contains(t, search, "*0-100")
	assert.Equal(t, "https://music.youtube.com/search?q=The+Beatles+-+Hey+Jude", search[len(search)-1])
}

func TestDownloadMissingBinary(t *testing.T) {
	_, err := YtDlp{Path: "/nonexistent/yt-dlp"}.Download(context.Background(), Track{Title: "x", URL: "y"})
	assert.Error(t, err)
}
