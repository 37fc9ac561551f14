// Package remote delivers inbound directives from the karaoke controller server.
//
// Directives arrive asynchronously and independently of playback state; their
// order from the controller is preserved, but it is uncorrelated with backend
// event timing. The orchestrator interleaves both streams.
package remote

import (
	"fmt"

	"github.com/kasha-player/kasha/playlist"
)

// Kind classifies an inbound directive.
type Kind int

const (
	// Idle signals that nothing is queued; the idle screen should show.
	Idle Kind = iota

	// Play carries a new playlist entry to perform.
	Play

	// Cmd carries a playback command for the current entry.
	Cmd

	// ConnectionLost signals that the controller channel dropped.
	ConnectionLost
)

// String returns the directive kind name.
func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Play:
		return "play"
	case Cmd:
		return "command"
	case ConnectionLost:
		return "connection-lost"
	default:
		return "unknown"
	}
}

// Command is the closed set of playback commands the controller may issue.
type Command int

const (
	CommandPause Command = iota + 1
	CommandPlay
	CommandSkip
)

// String returns the wire name of the command.
func (c Command) String() string {
	switch c {
	case CommandPause:
		return "pause"
	case CommandPlay:
		return "play"
	case CommandSkip:
		return "skip"
	default:
		return "invalid"
	}
}

// ParseCommand maps a wire command name onto the closed Command set.
func ParseCommand(name string) (Command, error) {
	switch name {
	case "pause":
		return CommandPause, nil
	case "play":
		return CommandPlay, nil
	case "skip":
		return CommandSkip, nil
	default:
		return 0, fmt.Errorf("unknown command %q", name)
	}
}

// Directive is one inbound controller message, normalized for the orchestrator.
type Directive struct {
	Kind    Kind
	Entry   *playlist.Entry // set when Kind == Play
	Command Command         // set when Kind == Cmd
}

// Source is anything that delivers directives in FIFO order.
type Source interface {
	Directives() <-chan Directive
}
