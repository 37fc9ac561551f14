// Package report forwards playback lifecycle events to the controller server.
//
// Reporting is strictly one-way and best-effort: a failed delivery is logged
// here and never surfaces to the caller, so a controller outage can not stall
// playback. Undeliverable events are spooled locally and reconciled in the
// background once the controller is reachable again.
package report

import "errors"

// ErrNoEntry is the contract-violation panic raised when a lifecycle event is
// reported with the "no entry" sentinel id.
var ErrNoEntry = errors.New("report: entry id is the no-entry sentinel")

// Reporter exposes one method per playback lifecycle event.
type Reporter interface {
	// StartedTransition reports that the transition screen for the entry began playing.
	StartedTransition(id int64)

	// StartedSong reports that the entry's media began playing.
	StartedSong(id int64)

	// Finished reports that the entry's media reached its natural end.
	Finished(id int64)

	// CouldNotPlay reports that the entry's media could not be started.
	CouldNotPlay(id int64)

	// Paused reports a pause at the given position in whole seconds.
	Paused(id int64, seconds int)

	// Resumed reports a resume at the given position in whole seconds.
	Resumed(id int64, seconds int)

	// Error reports a playback failure with the backend's message.
	Error(id int64, message string)
}

// guard enforces the non-sentinel id contract shared by every event.
func guard(id int64) {
	if id <= 0 {
		panic(ErrNoEntry)
	}
}
