package playback

import (
	"fmt"

	"github.com/kasha-player/kasha/backend"
	"github.com/kasha-player/kasha/playlist"
	"github.com/samber/mo"
)

// session is the orchestrator's mutable state. Exactly one exists per
// orchestrator and it is touched only from inside the event loop.
type session struct {
	phase  Phase
	paused bool

	// current is the entry being performed; present iff phase is not idle
	// or stopping.
	current mo.Option[playlist.Entry]

	// pending is the song media queued behind the transition screen;
	// present iff phase is transition.
	pending mo.Option[backend.Media]
}

func newSession() session {
	return session{
		phase:   PhaseIdle,
		current: mo.None[playlist.Entry](),
		pending: mo.None[backend.Media](),
	}
}

// clear drops the active entry and returns the session to idle.
func (s *session) clear() {
	s.phase = PhaseIdle
	s.paused = false
	s.current = mo.None[playlist.Entry]()
	s.pending = mo.None[backend.Media]()
}

// mustCheck panics when a session invariant is violated. Violations are
// programmer errors, never runtime conditions.
func (s *session) mustCheck() {
	if err := s.check(); err != nil {
		panic(err)
	}
}

func (s *session) check() error {
	if s.phase == PhaseStopping {
		if s.current.IsPresent() || s.pending.IsPresent() || s.paused {
			return fmt.Errorf("playback: stopping phase still holds session state")
		}
		return nil
	}
	if (s.phase == PhaseIdle) != s.current.IsAbsent() {
		return fmt.Errorf("playback: phase %s with current entry present=%v", s.phase, s.current.IsPresent())
	}
	if s.paused && s.phase != PhaseSong {
		return fmt.Errorf("playback: paused flag set in phase %s", s.phase)
	}
	if s.pending.IsPresent() != (s.phase == PhaseTransition) {
		return fmt.Errorf("playback: pending media present=%v in phase %s", s.pending.IsPresent(), s.phase)
	}
	return nil
}
