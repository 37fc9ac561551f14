// Package backend defines a unified abstraction layer for media playback engines.
// The architecture supports multiple backends, with the primary implementation targeting 'mpv' via its JSON-IPC interface.
package backend

import (
	"fmt"

	"github.com/kasha-player/kasha/key"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Media is the backend-native handle for one playable resource.
type Media struct {
	// Path is the local path or URL of the audio-video resource.
	Path string

	// Title is shown in the engine's window title.
	Title string
}

// EventKind classifies an inbound backend event.
type EventKind int

const (
	// Ended signals that the current media stopped playing. The Reason field
	// disambiguates a natural end from interruptions.
	Ended EventKind = iota

	// Failed signals that the engine could not continue playing the current media.
	Failed
)

// ReasonNormal marks an Ended event caused by the media reaching its natural end.
const ReasonNormal = "normal"

// Event is an inbound notification from the playback engine.
type Event struct {
	Kind    EventKind
	Reason  string // set for Ended events
	Message string // set for Failed events
}

// Backend encapsulates the required capabilities of a media playback engine.
//
// Play, Pause, and Stop are imperative calls; Events delivers the engine's
// end-of-media and error notifications. Implementations are safe for calls
// from a single goroutine at a time, which is all the orchestrator needs.
type Backend interface {
	// Play starts playback of the given media, replacing whatever is playing.
	Play(media Media) error

	// Pause suspends (true) or resumes (false) the current playback.
	Pause(paused bool) error

	// Stop interrupts the current playback without loading anything new.
	Stop() error

	// Timing returns the current playback position in whole seconds.
	// It returns 0 whenever nothing meaningful is playing.
	Timing() int

	// Events returns the channel carrying end-of-media and error notifications.
	Events() <-chan Event

	// Close terminates the playback engine and releases all associated system resources.
	Close() error
}

// New selects and constructs the backend registered under the given name.
// The empty name falls back to the configured default. Backend selection
// happens once at session construction and is immutable afterwards.
func New(name string, logger *logrus.Entry) (Backend, error) {
	if name == "" {
		name = viper.GetString(key.Player)
	}

	switch name {
	case "mpv":
		return NewMPV(logger)
	case "iina":
		return NewIINA(), nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", name)
	}
}
