package backend

import (
	"testing"

	"github.com/kasha-player/kasha/log"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Accepts local paths", func() {
			p, err := sanitizeMediaTarget("songs/karaoke night.mp4")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, "songs/karaoke night.mp4")
		})

		Convey("Accepts http urls", func() {
			p, err := sanitizeMediaTarget("https://example.com/a.mp4")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, "https://example.com/a.mp4")
		})

		Convey("Rejects empty locators", func() {
			_, err := sanitizeMediaTarget("  ")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects flag injection", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects exotic schemes", func() {
			_, err := sanitizeMediaTarget("ftp://example.com/a.mp4")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects control characters", func() {
			_, err := sanitizeMediaTarget("a\nb.mp4")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSanitizeTitle(t *testing.T) {
	Convey("sanitizeTitle", t, func() {
		So(sanitizeTitle("a\nb\tc\x00"), ShouldEqual, "a b c")
		So(sanitizeTitle("  spaced  "), ShouldEqual, "spaced")
	})
}

func TestEventTranslation(t *testing.T) {
	Convey("mpv end-file translation", t, func() {
		out := make(chan Event, 4)
		el := newEventListener("", out, make(chan struct{}), log.Discard())

		Convey("eof becomes a normal end", func() {
			el.processEvent(`{"event":"end-file","reason":"eof"}`)
			ev := <-out
			So(ev.Kind, ShouldEqual, Ended)
			So(ev.Reason, ShouldEqual, ReasonNormal)
		})

		Convey("error becomes a failure with message", func() {
			el.processEvent(`{"event":"end-file","reason":"error","file_error":"no decoder"}`)
			ev := <-out
			So(ev.Kind, ShouldEqual, Failed)
			So(ev.Message, ShouldEqual, "no decoder")
		})

		Convey("stop is forwarded with its reason", func() {
			el.processEvent(`{"event":"end-file","reason":"stop"}`)
			ev := <-out
			So(ev.Kind, ShouldEqual, Ended)
			So(ev.Reason, ShouldEqual, "stop")
		})

		Convey("non end-file events are dropped", func() {
			el.processEvent(`{"event":"playback-restart"}`)
			So(len(out), ShouldEqual, 0)
		})

		Convey("garbage lines are dropped", func() {
			el.processEvent(`{"event":`)
			So(len(out), ShouldEqual, 0)
		})
	})
}

func TestNewFactory(t *testing.T) {
	Convey("Backend factory", t, func() {
		Convey("Rejects unknown backend names", func() {
			_, err := New("winamp", log.Discard())
			So(err, ShouldNotBeNil)
		})
	})
}
