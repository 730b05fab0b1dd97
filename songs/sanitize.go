/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"regexp"
	"strings"
)

var (
	trailingBrackets  = regexp.MustCompile(`\s*(\([^()]*\)|\[[^\[\]]*\])\s*$`)
	trailingQualifier = regexp.MustCompile(`(?i)\s+-\s+[^-]*\b(remix|edit|version|remaster(ed)?|live|mix|mono|stereo|acoustic|instrumental|demo|single|bonus|feat\.?|from)\b[^-]*$`)
)

// SanitizeTitle drops the qualifiers catalogs append to titles, such as
// "(feat. X)", "[Remastered]" or " - Radio Edit", which nobody would type
// when guessing.
func SanitizeTitle(title string) string {
	out := strings.TrimSpace(title)

	for {
		next := trailingQualifier.ReplaceAllString(out, "")
		next = trailingBrackets.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == out || next == "" {
			break
		}
		out = next
	}

	return out
}
