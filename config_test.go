/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		maxRooms:       10,
		port:           8080,
		roundTime:      75 * time.Second,
		rounds:         9,
		sessionTimeout: time.Hour,
		warmup:         4 * time.Second,
		ytdlp:          "yt-dlp",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().validate())

	broken := map[string]func(*Config){
		"port too low":        func(c *Config) { c.port = 0 },
		"port too high":       func(c *Config) { c.port = 70000 },
		"cert without key":    func(c *Config) { c.tlsCert = "cert.pem" },
		"key without cert":    func(c *Config) { c.tlsKey = "key.pem" },
		"spotify id only":     func(c *Config) { c.spotifyID = "id" },
		"spotify secret only": func(c *Config) { c.spotifySecret = "secret" },
		"no rounds":           func(c *Config) { c.rounds = 0 },
		"short rounds":        func(c *Config) { c.roundTime = 5 * time.Second },
		"negative warmup":     func(c *Config) { c.warmup = -time.Second },
		"no rooms":            func(c *Config) { c.maxRooms = 0 },
	}

	for name, breakIt := range broken {
		cfg := validConfig()
		breakIt(cfg)
		assert.Error(t, cfg.validate(), name)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())
	assert.False(t, cfg.spotifyEnabled())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	cfg.spotifyID, cfg.spotifySecret = "id", "secret"
	assert.Equal(t, "https", cfg.scheme())
	assert.True(t, cfg.spotifyEnabled())
}

func TestFlagsReadEnvironment(t *testing.T) {
	t.Setenv("GUESSTHESONG_PORT", "9000")
	t.Setenv("GUESSTHESONG_ROUND_TIME", "30s")
	t.Setenv("GUESSTHESONG_SPOTIFY_ID", "client")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--rounds", "3"}))

	assert.Equal(t, 9000, cfg.port)
	assert.Equal(t, 30*time.Second, cfg.roundTime)
	assert.Equal(t, "client", cfg.spotifyID)
	assert.Equal(t, 3, cfg.rounds)
	assert.Equal(t, 4*time.Second, cfg.warmup)
	assert.Equal(t, "yt-dlp", cfg.ytdlp)
}
