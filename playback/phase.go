// Package playback implements the orchestration core: it reconciles remote
// directives, backend end-of-media callbacks, and pause/resume requests into
// a single consistent sequence of player states.
package playback

// Phase is the orchestrator's high-level playback state.
type Phase int

const (
	// PhaseIdle shows the looped idle screen; no entry is active.
	PhaseIdle Phase = iota

	// PhaseTransition shows the transition screen while the song waits as
	// pending media.
	PhaseTransition

	// PhaseSong plays the requested entry, possibly paused.
	PhaseSong

	// PhaseStopping is the terminal phase entered only on shutdown.
	PhaseStopping
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTransition:
		return "transition"
	case PhaseSong:
		return "song"
	case PhaseStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
