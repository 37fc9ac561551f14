package report

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kasha-player/kasha/filesystem"
	"github.com/kasha-player/kasha/log"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHTTPReporter(t *testing.T) {
	Convey("HTTP reporter", t, func() {
		var got []map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var m map[string]any
			_ = json.Unmarshal(body, &m)
			m["_path"] = r.URL.Path
			m["_auth"] = r.Header.Get("Authorization")
			got = append(got, m)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		r := NewHTTP(server.URL, "secret", log.Discard())

		Convey("Posts lifecycle events with entry id and bearer token", func() {
			r.StartedTransition(7)
			r.StartedSong(7)
			r.Finished(7)

			So(len(got), ShouldEqual, 3)
			So(got[0]["event"], ShouldEqual, "started_transition")
			So(got[0]["entry"], ShouldEqual, 7)
			So(got[0]["_path"], ShouldEqual, "/api/player/events")
			So(got[0]["_auth"], ShouldEqual, "Bearer secret")
			So(got[1]["event"], ShouldEqual, "started_song")
			So(got[2]["event"], ShouldEqual, "finished")
		})

		Convey("Carries timing for paused and resumed", func() {
			r.Paused(3, 42)
			r.Resumed(3, 45)

			So(len(got), ShouldEqual, 2)
			So(got[0]["event"], ShouldEqual, "paused")
			So(got[0]["timing"], ShouldEqual, 42)
			So(got[1]["event"], ShouldEqual, "resumed")
			So(got[1]["timing"], ShouldEqual, 45)
		})

		Convey("A position of zero seconds still carries timing", func() {
			r.Paused(4, 0)

			So(len(got), ShouldEqual, 1)
			timing, ok := got[0]["timing"]
			So(ok, ShouldBeTrue)
			So(timing, ShouldEqual, 0)
		})

		Convey("Carries the message for error", func() {
			r.Error(9, "no decoder")

			So(len(got), ShouldEqual, 1)
			So(got[0]["event"], ShouldEqual, "error")
			So(got[0]["message"], ShouldEqual, "no decoder")
		})

		Convey("Panics on the no-entry sentinel", func() {
			So(func() { r.Finished(0) }, ShouldPanicWith, ErrNoEntry)
			So(func() { r.Error(-1, "x") }, ShouldPanicWith, ErrNoEntry)
		})
	})

	Convey("Delivery failures never propagate", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		r := NewHTTP(server.URL, "", log.Discard())
		server.Close() // refuse the connection entirely

		So(func() { r.Finished(1) }, ShouldNotPanic)
		So(func() { r.CouldNotPlay(1) }, ShouldNotPanic)
	})
}

func TestDeferredSpool(t *testing.T) {
	Convey("Undelivered events are spooled and reconciled", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		var mu sync.Mutex
		var got []map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var m map[string]any
			_ = json.Unmarshal(body, &m)
			mu.Lock()
			got = append(got, m)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		down := NewHTTP("http://127.0.0.1:1", "", log.Discard())
		down.Finished(4)
		down.Error(4, "boom")

		Convey("Failed deliveries land in the spool file", func() {
			content, err := filesystem.API().ReadFile(spoolFile())
			So(err, ShouldBeNil)
			So(string(content), ShouldContainSubstring, `"finished"`)
			So(string(content), ShouldContainSubstring, `"error"`)
		})

		Convey("Reconciliation re-sends them and clears the spool", func() {
			up := NewHTTP(server.URL, "", log.Discard())
			up.ReconcileDeferred()

			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				if exists, _ := filesystem.API().Exists(spoolFile()); !exists {
					break
				}
				time.Sleep(50 * time.Millisecond)
			}

			mu.Lock()
			defer mu.Unlock()
			So(len(got), ShouldEqual, 2)
			So(got[0]["event"], ShouldEqual, "finished")
			So(got[1]["event"], ShouldEqual, "error")

			exists, _ := filesystem.API().Exists(spoolFile())
			So(exists, ShouldBeFalse)
		})
	})
}

func TestReconcileDelay(t *testing.T) {
	Convey("The reconciliation delay grows but stays bounded", t, func() {
		So(reconcileDelay(0), ShouldBeGreaterThanOrEqualTo, 100*time.Millisecond)
		So(reconcileDelay(3), ShouldBeGreaterThanOrEqualTo, 800*time.Millisecond)

		Convey("Large spool positions never exceed the cap", func() {
			for _, i := range []int{9, 20, 57, 100, 1000} {
				d := reconcileDelay(i)
				So(d, ShouldBeGreaterThan, 0)
				So(d, ShouldBeLessThanOrEqualTo, maxReconcileDelay+100*time.Millisecond)
			}
		})
	})
}
