package backend

import (
	"fmt"
	"os/exec"
	"runtime"
)

// IINA implements the Backend interface for macOS native IINA playback.
// It acts as a limited stand-in since IINA does not expose the same IPC
// socket interface as mpv: process exit is the only end-of-media signal.
type IINA struct {
	cmd    *exec.Cmd
	events chan Event
}

func NewIINA() *IINA {
	return &IINA{
		events: make(chan Event, eventBufferSize),
	}
}

func (m *IINA) Play(media Media) error {
	if runtime.GOOS != "darwin" {
		return fmt.Errorf("IINA is only supported on macOS")
	}

	safeTarget, err := sanitizeMediaTarget(media.Path)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	args := []string{"-a", "IINA", "--args", fmt.Sprintf("--mpv-force-media-title=%s", sanitizeTitle(media.Title)), safeTarget}

	m.cmd = exec.Command("open", args...)

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("LaunchServices failed to invoke IINA: %w", err)
	}

	// Process exit is the only completion signal IINA offers.
	cmd := m.cmd
	go func() {
		if err := cmd.Wait(); err != nil {
			m.events <- Event{Kind: Failed, Message: err.Error()}
			return
		}
		m.events <- Event{Kind: Ended, Reason: ReasonNormal}
	}()

	return nil
}

// Pause is not supported by the LaunchServices invocation path.
func (m *IINA) Pause(paused bool) error { return nil }

func (m *IINA) Stop() error {
	if m.cmd != nil && m.cmd.Process != nil {
		return m.cmd.Process.Kill()
	}
	return nil
}

func (m *IINA) Timing() int { return 0 }

func (m *IINA) Events() <-chan Event { return m.events }

func (m *IINA) Close() error {
	return m.Stop()
}
