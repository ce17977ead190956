// Package roomphase derives a room's current lifecycle phase from its
// creation timestamp. The derivation is pure: phase is never stored, only
// recomputed, so any number of independent consumers agree at every tick.
package roomphase

import (
	"time"

	"amoura/backend/internal/config"
)

// Phase is a named interval of a room's lifetime with distinct allowed actions.
type Phase string

const (
	PhasePreSecret      Phase = "PRE_SECRET"
	PhaseSecret         Phase = "SECRET"
	PhaseCupidInterim   Phase = "CUPID_INTERIM"
	PhaseCupidMain      Phase = "CUPID_MAIN"
	PhaseCountdownToEnd Phase = "COUNTDOWN_TO_END"
	PhasePostEvent      Phase = "POST_EVENT"
	// PhaseError is terminal: the room's createdAt is missing or unusable.
	PhaseError Phase = "ERROR"
)

// Resolve returns the phase at the given instant plus the time remaining
// until the next boundary. Boundaries are half-open [start, end): the exact
// boundary instant already belongs to the following phase. A zero createdAt
// yields PhaseError with zero remaining.
func Resolve(createdAt, now time.Time) (Phase, time.Duration) {
	if createdAt.IsZero() {
		return PhaseError, 0
	}

	elapsed := now.Sub(createdAt)
	switch {
	case elapsed < config.SecretStart:
		return PhasePreSecret, config.SecretStart - elapsed
	case elapsed < config.SecretEnd:
		return PhaseSecret, config.SecretEnd - elapsed
	case elapsed < config.CupidInterimEnd:
		return PhaseCupidInterim, config.CupidInterimEnd - elapsed
	case elapsed < config.CupidMainEnd:
		return PhaseCupidMain, config.CupidMainEnd - elapsed
	case elapsed < config.RoomEnd:
		return PhaseCountdownToEnd, config.RoomEnd - elapsed
	default:
		return PhasePostEvent, 0
	}
}

// TickFunc receives the derived phase and whole seconds remaining until the
// next boundary.
type TickFunc func(phase Phase, remainingSeconds int)

// Scheduler re-derives the phase once per second and hands the result to a
// callback. It holds no state beyond the ticker handle; stopping it is the
// owner's responsibility on every teardown path.
type Scheduler struct {
	createdAt time.Time
	fn        TickFunc
	ticker    *time.Ticker
	done      chan struct{}
}

// NewScheduler starts a 1 Hz scheduler for the given room origin. The
// callback fires immediately with the current derivation, then on every tick.
func NewScheduler(createdAt time.Time, fn TickFunc) *Scheduler {
	s := &Scheduler{
		createdAt: createdAt,
		fn:        fn,
		ticker:    time.NewTicker(time.Second),
		done:      make(chan struct{}),
	}
	s.emit(time.Now())
	go s.loop()
	return s
}

func (s *Scheduler) loop() {
	for {
		select {
		case <-s.done:
			return
		case now := <-s.ticker.C:
			s.emit(now)
		}
	}
}

func (s *Scheduler) emit(now time.Time) {
	phase, remaining := Resolve(s.createdAt, now)
	seconds := int(remaining / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	s.fn(phase, seconds)
}

// Stop releases the ticker. Safe to call once; the scheduler must not be
// reused afterwards.
func (s *Scheduler) Stop() {
	s.ticker.Stop()
	close(s.done)
}
