/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// YtDlp downloads audio with the yt-dlp binary.
type YtDlp struct {
	Path string
}

// Download fetches t and returns the extracted audio stream.
func (y YtDlp) Download(ctx context.Context, t Track) ([]byte, error) {
	bin := y.Path
	if bin == "" {
		bin = "yt-dlp"
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, downloadArgs(t)...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("download %q: %w: %s", t.Title, err, strings.TrimSpace(stderr.String()))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("download %q: no audio returned", t.Title)
	}

	return out, nil
}

// downloadArgs fetches t directly when it has a URL. Otherwise YouTube Music
// is searched for "artists - title" and the first result is cut to its
// first 100 seconds.
func downloadArgs(t Track) []string {
	args := []string{"-x", "-o", "-"}
	if t.URL != "" {
		return append(args, t.URL)
	}

	query := strings.Join(t.Artists, ", ") + " - " + t.Title

	return append(args,
		"--playlist-end", "1",
		"--download-sections", "*0-100",
		"https://music.youtube.com/search?q="+url.QueryEscape(query),
	)
}
