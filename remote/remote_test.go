package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kasha-player/kasha/log"
	"github.com/kasha-player/kasha/playlist"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCommand(t *testing.T) {
	Convey("ParseCommand", t, func() {
		Convey("Maps the closed command set", func() {
			for name, want := range map[string]Command{
				"pause": CommandPause,
				"play":  CommandPlay,
				"skip":  CommandSkip,
			} {
				cmd, err := ParseCommand(name)
				So(err, ShouldBeNil)
				So(cmd, ShouldEqual, want)
			}
		})

		Convey("Rejects unknown names", func() {
			_, err := ParseCommand("rewind")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestTranslate(t *testing.T) {
	Convey("Message translation", t, func() {
		Convey("idle", func() {
			d, err := translate(message{Type: "idle"})
			So(err, ShouldBeNil)
			So(d.Kind, ShouldEqual, Idle)
		})

		Convey("play requires a valid entry", func() {
			_, err := translate(message{Type: "play"})
			So(err, ShouldNotBeNil)

			_, err = translate(message{Type: "play", Entry: &playlist.Entry{MediaLocator: "a.mp4"}})
			So(err, ShouldNotBeNil)

			_, err = translate(message{Type: "play", Entry: &playEntry})
			So(err, ShouldBeNil)
		})

		Convey("play with an empty locator still reaches the orchestrator", func() {
			// The entry must be forwarded so its failure is reported back to
			// the controller instead of vanishing at the wire boundary.
			d, err := translate(message{Type: "play", Entry: &playlist.Entry{ID: 3}})
			So(err, ShouldBeNil)
			So(d.Kind, ShouldEqual, Play)
			So(d.Entry.ID, ShouldEqual, 3)
			So(d.Entry.MediaLocator, ShouldBeEmpty)
		})

		Convey("command requires a known name", func() {
			d, err := translate(message{Type: "command", Command: "skip"})
			So(err, ShouldBeNil)
			So(d.Kind, ShouldEqual, Cmd)
			So(d.Command, ShouldEqual, CommandSkip)

			_, err = translate(message{Type: "command", Command: "warp"})
			So(err, ShouldNotBeNil)
		})

		Convey("unknown types are rejected", func() {
			_, err := translate(message{Type: "reboot"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPoller(t *testing.T) {
	Convey("Poller", t, func() {
		Convey("Preserves FIFO order of a message stream", func() {
			served := false
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if served {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				served = true
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`
					{"type":"play","entry":{"id":1,"media_locator":"a.mp4","owner":"alice"}}
					{"type":"command","command":"pause"}
					{"type":"idle"}
				`))
			}))
			defer server.Close()

			p := NewPoller(server.URL, "", log.Discard())
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() { _ = p.Run(ctx) }()

			first := receive(p.Directives())
			So(first.Kind, ShouldEqual, Play)
			So(first.Entry.ID, ShouldEqual, 1)
			So(first.Entry.Owner, ShouldEqual, "alice")

			second := receive(p.Directives())
			So(second.Kind, ShouldEqual, Cmd)
			So(second.Command, ShouldEqual, CommandPause)

			third := receive(p.Directives())
			So(third.Kind, ShouldEqual, Idle)
		})

		Convey("Emits one ConnectionLost when the channel drops", func() {
			requests := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				if requests == 1 {
					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte(`{"type":"idle"}`))
					return
				}
				// Hijack and drop to simulate an outage.
				hj := w.(http.Hijacker)
				conn, _, _ := hj.Hijack()
				_ = conn.Close()
			}))
			defer server.Close()

			p := NewPoller(server.URL, "", log.Discard())
			p.backoff = time.Millisecond
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() { _ = p.Run(ctx) }()

			So(receive(p.Directives()).Kind, ShouldEqual, Idle)
			So(receive(p.Directives()).Kind, ShouldEqual, ConnectionLost)
		})
	})
}

var playEntry = playlist.Entry{ID: 5, MediaLocator: "b.mp4", Owner: "bob"}

func receive(ch <-chan Directive) Directive {
	select {
	case d := <-ch:
		return d
	case <-time.After(3 * time.Second):
		panic("timed out waiting for directive")
	}
}
