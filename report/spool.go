package report

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/kasha-player/kasha/filesystem"
	"github.com/kasha-player/kasha/where"
)

// deferred wraps a lifecycle event that could not be delivered, queued in a
// local JSON-log for later reconciliation.
type deferred struct {
	Timestamp int64 `json:"timestamp"`
	Event     event `json:"event"`
}

// spoolTTL bounds how long an undelivered event stays eligible for
// redelivery. Stale lifecycle reports are useless to the controller.
const spoolTTL = 24 * time.Hour

// maxReconcileDelay caps the inter-delivery backoff so a large spool still
// drains in bounded time.
const maxReconcileDelay = 30 * time.Second

// reconcileDelay returns the throttling delay before re-sending the event at
// the given position in the spool: exponential with jitter, capped.
func reconcileDelay(i int) time.Duration {
	delay := maxReconcileDelay
	if i < 9 {
		// Past 1<<8 the exponential curve would exceed the cap anyway, and
		// the shift itself overflows for large spools.
		delay = time.Duration(1<<i) * 100 * time.Millisecond
	}
	return delay + time.Duration(rand.Intn(100))*time.Millisecond
}

func spoolFile() string {
	return filepath.Join(where.Cache(), "deferred-reports.json")
}

// spool persists an undelivered event for deferred reconciliation.
func (h *HTTP) spool(ev event) {
	f, err := filesystem.API().OpenFile(spoolFile(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		h.log.Errorf("spool %s for entry %d: %v", ev.Event, ev.Entry, err)
		return
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(deferred{Timestamp: time.Now().Unix(), Event: ev}); err != nil {
		h.log.Errorf("spool %s for entry %d: %v", ev.Event, ev.Entry, err)
	}
}

// ReconcileDeferred initializes an asynchronous background process that
// re-sends previously spooled lifecycle events. The spool file is truncated
// only when every eligible event was delivered.
func (h *HTTP) ReconcileDeferred() {
	go func() {
		path := spoolFile()
		info, err := filesystem.API().Stat(path)
		if err != nil || info.Size() == 0 {
			return
		}

		content, err := filesystem.API().ReadFile(path)
		if err != nil {
			return
		}

		var events []deferred
		decoder := json.NewDecoder(bytes.NewReader(content))
		for decoder.More() {
			var d deferred
			if err := decoder.Decode(&d); err == nil {
				events = append(events, d)
			}
		}

		if len(events) == 0 {
			return
		}

		oldest := time.Now().Add(-spoolTTL).Unix()
		delivered := 0

		for i, d := range events {
			if d.Timestamp < oldest {
				h.log.Debugf("dropping stale deferred report %s for entry %d", d.Event.Event, d.Event.Entry)
				delivered++
				continue
			}

			time.Sleep(reconcileDelay(i))

			payload, err := json.Marshal(d.Event)
			if err != nil {
				delivered++
				continue
			}

			if err := h.deliver(payload); err == nil {
				delivered++
			}
		}

		if delivered == len(events) {
			_ = filesystem.API().Remove(path)
		}
	}()
}
