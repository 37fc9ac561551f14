package playback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kasha-player/kasha/backend"
	"github.com/kasha-player/kasha/filesystem"
	"github.com/kasha-player/kasha/key"
	"github.com/kasha-player/kasha/playlist"
	"github.com/kasha-player/kasha/remote"
	"github.com/kasha-player/kasha/report"
	"github.com/kasha-player/kasha/screen"
	"github.com/samber/mo"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ErrInvalidCommand is the contract-violation panic raised when a command
// outside the pause/play/skip set reaches the orchestrator.
var ErrInvalidCommand = errors.New("playback: command outside the pause/play/skip contract")

// Orchestrator owns the playback state machine. It serializes the remote
// directive stream and the backend event stream into one processing loop, so
// every phase transition is an atomic read-modify-write over the session.
type Orchestrator struct {
	backend    backend.Backend
	reporter   report.Reporter
	screens    *screen.Resolver
	directives <-chan remote.Directive
	log        *logrus.Entry

	session     session
	stopTimeout time.Duration
}

// New wires an orchestrator. All collaborators are injected once at
// construction and never swapped afterwards.
func New(b backend.Backend, r report.Reporter, s *screen.Resolver, directives <-chan remote.Directive, logger *logrus.Entry) *Orchestrator {
	stopTimeout := time.Duration(viper.GetInt(key.PlayerStopTimeout)) * time.Second
	if stopTimeout <= 0 {
		stopTimeout = 3 * time.Second
	}

	return &Orchestrator{
		backend:     b,
		reporter:    r,
		screens:     s,
		directives:  directives,
		log:         logger,
		session:     newSession(),
		stopTimeout: stopTimeout,
	}
}

// Run consumes both event sources until the context is cancelled, then
// commands the backend to stop and enters the terminal phase.
//
// Run is the orchestrator's single serialization point: no session mutation
// happens outside it.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.showIdle()

	directives := o.directives

	for {
		select {
		case <-ctx.Done():
			o.shutdown()
			return nil

		case d, ok := <-directives:
			if !ok {
				// The command source closed for good; keep serving backend
				// events so the idle screen loop survives until shutdown.
				directives = nil
				continue
			}
			o.handleDirective(d)
			o.session.mustCheck()

		case ev := <-o.backend.Events():
			o.handleBackendEvent(ev)
			o.session.mustCheck()
		}
	}
}

// handleDirective applies one remote directive to the session.
func (o *Orchestrator) handleDirective(d remote.Directive) {
	o.log.Debugf("directive %s in phase %s", d.Kind, o.session.phase)

	switch d.Kind {
	case remote.Play:
		o.startEntry(*d.Entry)

	case remote.Idle, remote.ConnectionLost:
		// Both mean the same thing to playback: nothing is queued anymore.
		o.abandonEntry()

	case remote.Cmd:
		o.handleCommand(d.Command)
	}
}

// startEntry accepts a playlist entry and begins its transition screen.
// A missing media file is reported without ever touching the backend.
func (o *Orchestrator) startEntry(e playlist.Entry) {
	if o.session.phase != PhaseIdle {
		// The controller superseded the active entry. Treat the old one as
		// skipped: no completion reports for it.
		o.log.Warnf("entry %d superseded by entry %d", o.currentID(), e.ID)
		o.abandonEntry()
	}

	o.log.Infof("accepted %s", e)

	if !mediaAvailable(e.MediaLocator) {
		reason := "media file not found: " + e.MediaLocator
		if e.MediaLocator == "" {
			reason = "empty media locator"
		}
		o.log.Errorf("entry %d unplayable: %s", e.ID, reason)
		o.reporter.CouldNotPlay(e.ID)
		o.reporter.Error(e.ID, reason)
		return
	}

	song := backend.Media{Path: e.MediaLocator, Title: e.Owner}

	transition, err := o.screens.Transition()
	if err != nil {
		// No transition screen available: go straight to the song. The
		// lifecycle still reports both stages exactly once.
		o.log.Warnf("transition screen unavailable: %v", err)
		o.reporter.StartedTransition(e.ID)
		if err := o.backend.Play(song); err != nil {
			o.failEntry(e.ID, err.Error())
			return
		}
		o.session.phase = PhaseSong
		o.session.paused = false
		o.session.current = mo.Some(e)
		o.session.pending = mo.None[backend.Media]()
		o.reporter.StartedSong(e.ID)
		return
	}

	if err := o.backend.Play(backend.Media{Path: transition, Title: e.Owner}); err != nil {
		o.failEntry(e.ID, err.Error())
		return
	}

	o.session.phase = PhaseTransition
	o.session.paused = false
	o.session.current = mo.Some(e)
	o.session.pending = mo.Some(song)
	o.reporter.StartedTransition(e.ID)
}

// handleCommand applies a pause/play/skip command. Anything else is a
// programming-contract violation.
func (o *Orchestrator) handleCommand(cmd remote.Command) {
	switch cmd {
	case remote.CommandPause:
		if o.session.phase != PhaseSong || o.session.paused {
			return
		}
		if err := o.backend.Pause(true); err != nil {
			o.log.Warnf("pause: %v", err)
			return
		}
		o.session.paused = true
		o.reporter.Paused(o.currentID(), o.backend.Timing())

	case remote.CommandPlay:
		if o.session.phase != PhaseSong || !o.session.paused {
			return
		}
		if err := o.backend.Pause(false); err != nil {
			o.log.Warnf("resume: %v", err)
			return
		}
		o.session.paused = false
		o.reporter.Resumed(o.currentID(), o.backend.Timing())

	case remote.CommandSkip:
		// A skip never produces completion reports for the skipped entry.
		o.abandonEntry()

	default:
		panic(ErrInvalidCommand)
	}
}

// abandonEntry discards the active entry without completion reporting and
// falls back to the idle screen. Issuing it while already idle is a no-op.
func (o *Orchestrator) abandonEntry() {
	if o.session.phase == PhaseIdle {
		return
	}

	o.log.Infof("abandoning entry %d", o.currentID())
	o.stopBackend()
	o.session.clear()
	o.showIdle()
}

// handleBackendEvent applies one end-of-media or error notification.
func (o *Orchestrator) handleBackendEvent(ev backend.Event) {
	if ev.Kind == backend.Failed {
		o.handleMediaError(ev.Message)
		return
	}

	if ev.Reason != backend.ReasonNormal {
		// Backend-specific non-terminal signals (stops we initiated, engine
		// redirects) must not corrupt the phase. Ignore them.
		o.log.Debugf("ignoring end-of-media with reason %q in phase %s", ev.Reason, o.session.phase)
		return
	}

	switch o.session.phase {
	case PhaseIdle:
		// The idle screen clip ran out; loop it.
		o.showIdle()

	case PhaseTransition:
		// The transition screen masked the song's load latency; swap the
		// pending media in now.
		song := o.session.pending.MustGet()
		id := o.currentID()

		if err := o.backend.Play(song); err != nil {
			o.failEntry(id, err.Error())
			return
		}

		o.session.phase = PhaseSong
		o.session.pending = mo.None[backend.Media]()
		o.reporter.StartedSong(id)

	case PhaseSong:
		id := o.currentID()
		o.log.Infof("entry %d finished", id)
		o.reporter.Finished(id)
		o.session.clear()
		o.showIdle()

	case PhaseStopping:
		// Late events after shutdown are irrelevant.
	}
}

// handleMediaError applies the terminal-for-this-entry error policy: report
// once, fall back to idle, never retry.
func (o *Orchestrator) handleMediaError(message string) {
	switch o.session.phase {
	case PhaseTransition:
		id := o.currentID()
		o.reporter.CouldNotPlay(id)
		o.reporter.Error(id, message)
		o.session.clear()
		o.showIdle()

	case PhaseSong:
		o.reporter.Error(o.currentID(), message)
		o.session.clear()
		o.showIdle()

	case PhaseIdle:
		// A broken idle screen must not spin the loop; stay dark and log.
		o.log.Errorf("idle screen playback failed: %s", message)

	case PhaseStopping:
	}
}

// failEntry reports a start failure and falls back to the idle screen.
func (o *Orchestrator) failEntry(id int64, message string) {
	o.log.Errorf("entry %d could not play: %s", id, message)
	o.reporter.CouldNotPlay(id)
	o.reporter.Error(id, message)
	o.session.clear()
	o.showIdle()
}

// showIdle starts (or restarts) the idle screen. The backend replaces
// whatever is currently loaded.
func (o *Orchestrator) showIdle() {
	idle, err := o.screens.Idle()
	if err != nil {
		o.log.Warnf("idle screen unavailable: %v", err)
		return
	}

	if err := o.backend.Play(backend.Media{Path: idle}); err != nil {
		o.log.Warnf("idle screen: %v", err)
	}
}

// shutdown performs the best-effort backend stop and enters the terminal phase.
func (o *Orchestrator) shutdown() {
	o.log.Infof("playback shutting down in phase %s", o.session.phase)
	o.stopBackend()
	o.session.clear()
	o.session.phase = PhaseStopping
	o.session.mustCheck()
}

// stopBackend issues a bounded stop: if the backend does not settle within
// the configured timeout we log a warning and proceed as if stopped.
func (o *Orchestrator) stopBackend() {
	done := make(chan error, 1)
	go func() { done <- o.backend.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			o.log.Warnf("backend stop: %v", err)
		}
	case <-time.After(o.stopTimeout):
		o.log.Warnf("backend stop timed out after %s, proceeding", o.stopTimeout)
	}
}

// currentID returns the active entry id. Callers only use it in phases where
// the invariants guarantee presence.
func (o *Orchestrator) currentID() int64 {
	return o.session.current.MustGet().ID
}

// mediaAvailable checks that a local media resource exists at dispatch time.
// Remote locators are left for the backend to resolve.
func mediaAvailable(locator string) bool {
	if strings.Contains(locator, "://") {
		return true
	}

	ok, err := filesystem.API().Exists(locator)
	return err == nil && ok
}
