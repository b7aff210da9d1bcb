package cracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Phase values carried by snapshots.
const (
	PhaseDictionary = "Dictionary"
	PhaseRunning    = "Running"
	PhaseDone       = "Done"
	PhaseError      = "Error"
)

// Snapshot is one progress observation. Attempts is monotonically
// non-decreasing across the snapshots of an invocation; CurrentPassword is
// informational and may lag the workers.
type Snapshot struct {
	Attempts           uint64
	CurrentPassword    string
	ElapsedSeconds     uint64
	PasswordsPerSecond float64
	Phase              string
}

const reportInterval = 500 * time.Millisecond

// emit delivers a snapshot without ever blocking a worker or the reporter:
// when the observer is slow the snapshot is dropped.
func emit(sink chan<- Snapshot, snap Snapshot) {
	if sink == nil {
		return
	}
	select {
	case sink <- snap:
	default:
	}
}

type reporter struct {
	l     zerolog.Logger
	state *searchState
	sink  chan<- Snapshot
}

// run publishes a snapshot every 500 ms until the search finishes or the
// observer detaches. Fixed cadence, no backoff.
func (r *reporter) run(ctx context.Context) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.state.found.Load() {
				return
			}
			emit(r.sink, r.snapshot())
		}
	}
}

func (r *reporter) snapshot() Snapshot {
	attempts := r.state.attempts.Load()
	elapsed := time.Since(r.state.start).Seconds()
	pps := 0.0
	if elapsed > 0 {
		pps = float64(attempts) / elapsed
	}
	return Snapshot{
		Attempts:           attempts,
		CurrentPassword:    r.state.currentSample(),
		ElapsedSeconds:     uint64(elapsed),
		PasswordsPerSecond: pps,
		Phase:              r.state.phaseName(),
	}
}
