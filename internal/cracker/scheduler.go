package cracker

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/felnanuke2/rapid-crak/internal/archive"
)

// chunkSize is the ordinal range claimed by a worker in one grab. Large
// enough that cursor contention is rare.
const chunkSize = 1 << 16

// scheduler drives the three search phases in order: custom words, embedded
// corpus, brute force. Workers share the coordination state; the first
// full-validator confirmation wins.
type scheduler struct {
	l       zerolog.Logger
	cfg     Config
	entry   *archive.EncryptedEntry
	charset Charset
	state   *searchState
	workers int
}

func newScheduler(l zerolog.Logger, cfg Config, entry *archive.EncryptedEntry, state *searchState) *scheduler {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &scheduler{
		l:       l.With().Str("domain", "scheduler").Logger(),
		cfg:     cfg,
		entry:   entry,
		charset: NewCharset(cfg),
		state:   state,
		workers: workers,
	}
}

// run executes every configured phase and returns the confirmed password,
// or an empty string when the space is exhausted or the search was poisoned.
func (s *scheduler) run(ctx context.Context) string {
	s.state.phase.Store(phaseDictionary)

	if len(s.cfg.CustomWords) > 0 {
		s.runCustomWords(ctx)
	}
	if s.cfg.UseDictionary && !s.state.found.Load() {
		s.runEmbeddedCorpus(ctx)
	}

	if s.cfg.anyClass() && !s.state.found.Load() {
		s.state.phase.Store(phaseRunning)
		s.runBruteForce(ctx)
	}

	password, _ := s.state.witness()
	return password
}

// runCustomWords tests the user-supplied words sequentially; the list is
// small, so every attempt is counted immediately.
func (s *scheduler) runCustomWords(ctx context.Context) {
	verifier := newFullVerifier(s.entry)
	for _, word := range s.cfg.CustomWords {
		if s.state.found.Load() || ctx.Err() != nil {
			return
		}
		s.state.waitIfPaused(ctx)
		candidate := []byte(word)
		if len(candidate) == 0 || len(candidate) > s.cfg.MaxLength {
			continue
		}
		s.state.attempts.Add(1)
		s.state.setSample(candidate)
		if matchesHeader(s.entry, candidate) && verifier.verify(candidate) {
			if s.state.claimWitness(candidate) {
				s.l.Debug().Str("phase", "custom-words").Msg("password confirmed")
			}
			return
		}
	}
}

// runEmbeddedCorpus fans the corpus slabs out across the pool; each worker
// scans its slab sequentially.
func (s *scheduler) runEmbeddedCorpus(ctx context.Context) {
	slabs := corpusSlabs()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, slab := range slabs {
		slab := slab
		g.Go(func() error {
			s.scanCorpusSlab(gctx, slab)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *scheduler) scanCorpusSlab(ctx context.Context, slab []byte) {
	verifier := newFullVerifier(s.entry)
	s.state.waitIfPaused(ctx)
	unflushed := uint64(0)
	var last []byte
	scanSlab(slab, s.cfg.MaxLength, func(word []byte) bool {
		unflushed++
		last = word
		if matchesHeader(s.entry, word) && verifier.verify(word) {
			if s.state.claimWitness(word) {
				s.l.Debug().Str("phase", "dictionary").Msg("password confirmed")
			}
			return false
		}
		if unflushed == batchSize {
			s.state.attempts.Add(unflushed)
			s.state.setSample(word)
			unflushed = 0
			s.state.waitIfPaused(ctx)
			if s.state.found.Load() || ctx.Err() != nil {
				return false
			}
		}
		return true
	})
	if unflushed > 0 {
		s.state.attempts.Add(unflushed)
		if last != nil {
			s.state.setSample(last)
		}
	}
}

// runBruteForce loops lengths from min to max. For each length the ordinal
// space is cut into fixed chunks claimed from an atomic cursor; the pool
// drains the chunk index space in parallel.
func (s *scheduler) runBruteForce(ctx context.Context) {
	for length := s.cfg.MinLength; length <= s.cfg.MaxLength; length++ {
		if s.state.found.Load() || ctx.Err() != nil {
			return
		}
		total := s.charset.SpaceSize(length)
		numChunks := total / chunkSize
		if total%chunkSize != 0 {
			numChunks++
		}
		s.l.Debug().
			Int("length", length).
			Uint64("candidates", total).
			Msg("starting length")

		var cursor atomic.Uint64
		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < s.workers; w++ {
			g.Go(func() error {
				verifier := newFullVerifier(s.entry)
				var buf [MaxPasswordLength]byte
				password := buf[:length]
				for {
					idx := cursor.Add(1) - 1
					if idx >= numChunks || s.state.found.Load() || gctx.Err() != nil {
						return nil
					}
					start := idx * chunkSize
					end := start + chunkSize
					if end > total || end < start {
						end = total
					}
					s.crackChunk(gctx, verifier, password, start, end)
				}
			})
		}
		_ = g.Wait()
	}
}

// crackChunk is the inner loop: seek once, then advance in place through the
// chunk. Bookkeeping (attempt flush, sample, pause, found) happens once per
// batch so the per-candidate cost stays at the fast check alone.
func (s *scheduler) crackChunk(ctx context.Context, verifier *fullVerifier, password []byte, start, end uint64) {
	s.state.waitIfPaused(ctx)
	s.charset.Seek(start, password)
	unflushed := uint64(0)
	for ordinal := start; ordinal < end; ordinal++ {
		unflushed++
		if matchesHeader(s.entry, password) && verifier.verify(password) {
			if s.state.claimWitness(password) {
				s.l.Debug().Str("phase", "brute-force").Msg("password confirmed")
			}
			s.state.attempts.Add(unflushed)
			return
		}
		if unflushed == batchSize {
			s.state.attempts.Add(unflushed)
			s.state.setSample(password)
			unflushed = 0
			s.state.waitIfPaused(ctx)
			if s.state.found.Load() || ctx.Err() != nil {
				return
			}
		}
		s.charset.Advance(password)
	}
	if unflushed > 0 {
		s.state.attempts.Add(unflushed)
		s.state.setSample(password)
	}
}
