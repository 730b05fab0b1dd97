/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	maxRooms       int
	port           int
	prefix         string
	profile        bool
	roundTime      time.Duration
	rounds         int
	sessionTimeout time.Duration
	spotifyID      string
	spotifySecret  string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
	warmup         time.Duration
	ytdlp          string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if (c.spotifyID == "") != (c.spotifySecret == "") {
		return errors.New("both --spotify-id and --spotify-secret must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.rounds < 1 {
		return fmt.Errorf("invalid round count (must be at least 1): %d", c.rounds)
	}
	if c.roundTime < 10*time.Second {
		return fmt.Errorf("invalid round time (must be at least 10s): %s", c.roundTime)
	}
	if c.warmup < 0 {
		return fmt.Errorf("invalid warmup (must not be negative): %s", c.warmup)
	}
	if c.maxRooms < 1 {
		return fmt.Errorf("invalid room limit (must be at least 1): %d", c.maxRooms)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) spotifyEnabled() bool {
	return c.spotifyID != "" && c.spotifySecret != ""
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GUESSTHESONG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "guessthesong",
		Short:         "A multiplayer guess-the-song party game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: GUESSTHESONG_BIND)")
	fs.IntVar(&cfg.maxRooms, "max-rooms", 100, "maximum number of concurrent rooms (env: GUESSTHESONG_MAX_ROOMS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: GUESSTHESONG_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: GUESSTHESONG_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: GUESSTHESONG_PROFILE)")
	fs.DurationVar(&cfg.roundTime, "round-time", 75*time.Second, "default length of a round (env: GUESSTHESONG_ROUND_TIME)")
	fs.IntVar(&cfg.rounds, "rounds", 9, "default number of rounds per game (env: GUESSTHESONG_ROUNDS)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are closed (env: GUESSTHESONG_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.spotifyID, "spotify-id", "", "spotify client id, enables spotify playlists (env: GUESSTHESONG_SPOTIFY_ID)")
	fs.StringVar(&cfg.spotifySecret, "spotify-secret", "", "spotify client secret (env: GUESSTHESONG_SPOTIFY_SECRET)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: GUESSTHESONG_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: GUESSTHESONG_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: GUESSTHESONG_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: GUESSTHESONG_VERSION)")
	fs.DurationVar(&cfg.warmup, "warmup", 4*time.Second, "pause between loading and the countdown (env: GUESSTHESONG_WARMUP)")
	fs.StringVar(&cfg.ytdlp, "ytdlp", "yt-dlp", "path to the yt-dlp binary (env: GUESSTHESONG_YTDLP)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("guessthesong v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
