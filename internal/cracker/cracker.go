// Package cracker recovers passphrases from ZipCrypto-protected archives.
//
// Candidates flow through a two-phase validator: a keystream check against
// the entry's encryption preamble rejects ~255/256 wrong passwords without
// touching the payload, and survivors are confirmed by decrypting,
// decompressing and CRC-checking the first entry. The search runs the
// dictionary phases first, then brute force over the configured character
// space, partitioned into ordinal chunks across all cores.
package cracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/felnanuke2/rapid-crak/internal/archive"
)

// Crack searches for the archive's password. Progress snapshots are
// delivered on sink at a 500 ms cadence and never block: a slow observer
// drops snapshots. The terminal outcome is the return value; a final
// snapshot with phase "Done" or "Error" is emitted as well. Cancelling ctx
// detaches the observer and surfaces ErrCancelled.
func Crack(ctx context.Context, archiveBytes []byte, cfg Config, sink chan<- Snapshot) (string, error) {
	l := log.With().Str("domain", "cracker").Logger()

	if err := cfg.validate(); err != nil {
		return "", failCrack(l, sink, err, nil)
	}
	entry, err := archive.FindEncryptedEntry(archiveBytes)
	if err != nil {
		return "", failCrack(l, sink, err, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := newSearchState()

	// Observer detach poisons the found flag so workers drain without
	// distinguishing found from cancelled.
	go func() {
		<-ctx.Done()
		state.poison()
	}()

	if len(cfg.CustomWords) > 0 || cfg.UseDictionary {
		emit(sink, Snapshot{CurrentPassword: "Scanning dictionary...", Phase: PhaseDictionary})
	}
	rep := &reporter{l: l, state: state, sink: sink}
	repDone := make(chan struct{})
	go func() {
		defer close(repDone)
		rep.run(ctx)
	}()

	sched := newScheduler(l, cfg, entry, state)
	password := sched.run(ctx)
	cancelled := ctx.Err() != nil
	cancel()
	<-repDone

	switch {
	case password != "":
		l.Info().Uint64("attempts", state.attempts.Load()).Msg("password recovered")
		final := rep.snapshot()
		final.Phase = PhaseDone
		final.CurrentPassword = password
		emit(sink, final)
		return password, nil
	case cancelled:
		return "", failCrack(l, sink, ErrCancelled, state)
	default:
		return "", failCrack(l, sink, ErrNotFound, state)
	}
}

// failCrack logs and emits the terminal Error snapshot. A nil state means
// the search never started.
func failCrack(l zerolog.Logger, sink chan<- Snapshot, err error, state *searchState) error {
	l.Warn().Err(err).Msg("crack finished without a password")
	snap := Snapshot{CurrentPassword: errorToken(err), Phase: PhaseError}
	if state != nil {
		snap.Attempts = state.attempts.Load()
		snap.ElapsedSeconds = uint64(time.Since(state.start).Seconds())
	}
	emit(sink, snap)
	return err
}

// TestSingle checks one candidate against the archive the same way a worker
// would: fast keystream check first, then authoritative decompression.
func TestSingle(archiveBytes []byte, password string) (bool, error) {
	entry, err := archive.FindEncryptedEntry(archiveBytes)
	if err != nil {
		return false, err
	}
	candidate := []byte(password)
	if !matchesHeader(entry, candidate) {
		return false, nil
	}
	return newFullVerifier(entry).verify(candidate), nil
}
