/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package songs

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/Seednode/guessthesong/task"
	"github.com/rs/zerolog"
)

// maxDraws bounds how many unplayable tracks one fetch skips over.
const maxDraws = 10

type fetch struct {
	task *task.Task
	song Song
	err  error
}

// Supplier hides download latency by always keeping one song in flight:
// Next hands out the prefetched song and immediately starts on the one
// after it.
type Supplier struct {
	source Source
	dl     Downloader
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending *fetch
	spare   *fetch // handed out to a caller that gave up waiting
	bag     []int
	closed  bool
}

// NewSupplier starts prefetching the first song right away.
func NewSupplier(source Source, dl Downloader, logger zerolog.Logger) *Supplier {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Supplier{
		source: source,
		dl:     dl,
		log:    logger.With().Str("playlist", source.Name()).Logger(),
		ctx:    ctx,
		cancel: cancel,
	}

	s.mu.Lock()
	s.pending = s.startLocked()
	s.mu.Unlock()

	return s
}

func (s *Supplier) Name() string {
	return s.source.Name()
}

// Next returns the prefetched song, waiting for it if it is still
// downloading, and starts prefetching its successor before it waits. A fetch
// abandoned because ctx ended is kept for the following call.
func (s *Supplier) Next(ctx context.Context) (Song, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Song{}, ErrClosed
	}

	var f *fetch
	if s.spare != nil {
		f, s.spare = s.spare, nil
	} else {
		f = s.pending
		s.pending = s.startLocked()
	}
	s.mu.Unlock()

	select {
	case <-f.task.Done():
		return f.song, f.err
	case <-ctx.Done():
	}

	s.mu.Lock()
	if !s.closed && s.spare == nil {
		s.spare = f
	} else {
		f.task.Stop()
	}
	s.mu.Unlock()

	return Song{}, ctx.Err()
}

// Close cancels the pending download.
func (s *Supplier) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.pending.task.Stop()
	if s.spare != nil {
		s.spare.task.Stop()
	}
}

func (s *Supplier) startLocked() *fetch {
	f := &fetch{}
	f.task = task.Spawn(s.ctx, func(ctx context.Context) {
		f.song, f.err = s.fetchOne(ctx)
	})
	return f
}

func (s *Supplier) fetchOne(ctx context.Context) (Song, error) {
	track, err := s.pick(ctx)
	if err != nil {
		return Song{}, err
	}

	audio, err := s.dl.Download(ctx, track)
	if err != nil {
		return Song{}, err
	}

	title := SanitizeTitle(track.Title)
	s.log.Debug().Str("title", title).Int("bytes", len(audio)).Msg("song ready")

	return Song{Title: title, Audio: audio}, nil
}

// pick draws without replacement from indexed sources, falling back to the
// source's own random choice otherwise.
func (s *Supplier) pick(ctx context.Context) (Track, error) {
	idx, ok := s.source.(Indexed)
	if !ok {
		return s.source.Random(ctx)
	}

	for range maxDraws {
		i, err := s.draw(idx.Len())
		if err != nil {
			return Track{}, err
		}

		t, err := idx.TrackAt(ctx, i)
		if errors.Is(err, ErrUnplayable) {
			s.log.Debug().Int("index", i).Msg("skipping unplayable track")
			continue
		}
		return t, err
	}

	return Track{}, fmt.Errorf("%d draws in a row: %w", maxDraws, ErrUnplayable)
}

// draw takes the next index from a shuffled bag of every position, refilling
// the bag once it runs dry.
func (s *Supplier) draw(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyPlaylist
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.bag) == 0 {
		s.bag = rand.Perm(n)
	}

	last := len(s.bag) - 1
	i := s.bag[last]
	s.bag = s.bag[:last]

	return i, nil
}
