package playlist

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Entry validation", t, func() {
		Convey("Accepts a well-formed entry", func() {
			e := Entry{ID: 1, MediaLocator: "songs/a.mp4", Owner: "alice"}
			So(e.Validate(), ShouldBeNil)
		})

		Convey("Rejects the zero id sentinel", func() {
			e := Entry{MediaLocator: "songs/a.mp4"}
			So(e.Validate(), ShouldNotBeNil)
		})

		Convey("Accepts an empty media locator", func() {
			// Locator problems surface as playback errors, not rejection.
			e := Entry{ID: 2}
			So(e.Validate(), ShouldBeNil)
		})
	})
}
