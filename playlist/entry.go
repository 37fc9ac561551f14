// Package playlist defines the unit of remotely-requested playback work.
package playlist

import (
	"errors"
	"fmt"
)

// ErrZeroID rejects entries carrying the "no entry" id sentinel.
var ErrZeroID = errors.New("entry id must be positive")

// Entry identifies one song to play. It is immutable once accepted by the
// orchestrator and is owned exclusively by it until completion, error, or skip.
type Entry struct {
	// ID is the controller-assigned identifier. It is never reused while the
	// orchestrator still references it. Zero is the "no entry" sentinel.
	ID int64 `json:"id"`

	// MediaLocator is the path or URI of the audio-video resource.
	MediaLocator string `json:"media_locator"`

	// Owner is display-only metadata (the singer's name). Opaque to playback.
	Owner string `json:"owner"`
}

// Validate reports whether the entry is well-formed enough to be accepted.
// An empty or unusable MediaLocator is deliberately not rejected here: such an
// entry must still reach the orchestrator so the failure is reported back to
// the controller as a playback error rather than silently dropped.
func (e Entry) Validate() error {
	if e.ID <= 0 {
		return ErrZeroID
	}
	return nil
}

// String renders the entry for logs.
func (e Entry) String() string {
	if e.Owner != "" {
		return fmt.Sprintf("entry %d (%s, by %s)", e.ID, e.MediaLocator, e.Owner)
	}
	return fmt.Sprintf("entry %d (%s)", e.ID, e.MediaLocator)
}
