/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "Yesterday", SanitizeTitle("Yesterday - Remastered 2009"))
	assert.Equal(t, "Heroes", SanitizeTitle("Heroes (2017 Remaster)"))
	assert.Equal(t, "Blinding Lights", SanitizeTitle("Blinding Lights [Official Video]"))
	assert.Equal(t, "Old Town Road", SanitizeTitle("Old Town Road (feat. Billy Ray Cyrus) - Remix"))
	assert.Equal(t, "Clocks", SanitizeTitle("  Clocks - Live in Sydney  "))
	assert.Equal(t, "Runaway", SanitizeTitle("Runaway - Radio Edit"))
}

func TestSanitizeTitleKeepsMeaningfulParts(t *testing.T) {
	assert.Equal(t, "Back in Black", SanitizeTitle("Back in Black"))
	assert.Equal(t, "Hey - Ho", SanitizeTitle("Hey - Ho"))
	assert.Equal(t, "(Intro)", SanitizeTitle("(Intro)"), "never strip a title down to nothing")
}
