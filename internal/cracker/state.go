package cracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// batchSize is the inner-loop bookkeeping interval: every batch the
	// worker flushes its attempt count, refreshes the sample, honours the
	// pause flag and re-reads found. Power of two.
	batchSize = 16384

	pauseCheckInterval = 50 * time.Millisecond
)

// paused is the process-wide pause flag; it outlives individual invocations.
var paused atomic.Bool

// SetPaused pauses or resumes every running and future invocation.
// Idempotent.
func SetPaused(v bool) {
	paused.Store(v)
}

// IsPaused reports the process-wide pause flag.
func IsPaused() bool {
	return paused.Load()
}

// searchState is the coordination plane shared by the workers and the
// reporter for one invocation. All counters use relaxed semantics: a worker
// may observe a slightly stale found and do a handful of extra tests, which
// is fine. The per-batch check bounds propagation.
type searchState struct {
	attempts atomic.Uint64
	found    atomic.Bool
	phase    atomic.Int32
	start    time.Time

	// sample and the witness password share the mutex; both are written
	// outside the inner loop.
	mu        sync.Mutex
	sample    [MaxPasswordLength]byte
	sampleLen int
	password  string
	witnessed bool
}

const (
	phaseDictionary int32 = iota
	phaseRunning
)

func newSearchState() *searchState {
	return &searchState{start: time.Now()}
}

func (s *searchState) phaseName() string {
	if s.phase.Load() == phaseDictionary {
		return PhaseDictionary
	}
	return PhaseRunning
}

func (s *searchState) setSample(p []byte) {
	s.mu.Lock()
	s.sampleLen = copy(s.sample[:], p)
	s.mu.Unlock()
}

func (s *searchState) currentSample() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.sample[:s.sampleLen])
}

// claimWitness elects the single winner: the first worker to confirm a
// candidate with the full validator while found is still false. Losers drop
// their candidate.
func (s *searchState) claimWitness(p []byte) bool {
	if !s.found.CompareAndSwap(false, true) {
		return false
	}
	s.mu.Lock()
	s.password = string(p)
	s.witnessed = true
	s.mu.Unlock()
	return true
}

func (s *searchState) witness() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password, s.witnessed
}

// poison marks the search as finished without a witness so workers drain.
// Used for cancellation; workers do not distinguish poison from found.
func (s *searchState) poison() {
	s.found.Store(true)
}

// waitIfPaused spins in a 50 ms sleep loop while the process-wide pause flag
// is set. Cancellation breaks the wait.
func (s *searchState) waitIfPaused(ctx context.Context) {
	for paused.Load() {
		if ctx.Err() != nil || s.found.Load() {
			return
		}
		time.Sleep(pauseCheckInterval)
	}
}
