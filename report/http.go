package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kasha-player/kasha/constant"
	"github.com/kasha-player/kasha/network"
	"github.com/kasha-player/kasha/util"
	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
)

// event is the wire representation of one lifecycle report. Timing is a
// pointer so a position of zero seconds still serializes for paused and
// resumed while the field stays absent from events that carry no timing.
type event struct {
	Event   string `json:"event"`
	Entry   int64  `json:"entry"`
	Message string `json:"message,omitempty"`
	Timing  *int   `json:"timing,omitempty"`
}

// HTTP delivers lifecycle events to the controller's player-events endpoint.
type HTTP struct {
	endpoint string
	token    string
	client   *http.Client
	log      *logrus.Entry
}

// NewHTTP creates a reporter posting to {baseURL}/api/player/events with an
// optional bearer token.
func NewHTTP(baseURL, token string, logger *logrus.Entry) *HTTP {
	return &HTTP{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/api/player/events",
		token:    token,
		client:   network.Client,
		log:      logger,
	}
}

func (h *HTTP) StartedTransition(id int64) { guard(id); h.send(event{Event: "started_transition", Entry: id}) }
func (h *HTTP) StartedSong(id int64)       { guard(id); h.send(event{Event: "started_song", Entry: id}) }
func (h *HTTP) Finished(id int64)          { guard(id); h.send(event{Event: "finished", Entry: id}) }
func (h *HTTP) CouldNotPlay(id int64)      { guard(id); h.send(event{Event: "could_not_play", Entry: id}) }

func (h *HTTP) Paused(id int64, seconds int) {
	guard(id)
	h.send(event{Event: "paused", Entry: id, Timing: lo.ToPtr(seconds)})
}

func (h *HTTP) Resumed(id int64, seconds int) {
	guard(id)
	h.send(event{Event: "resumed", Entry: id, Timing: lo.ToPtr(seconds)})
}

func (h *HTTP) Error(id int64, message string) {
	guard(id)
	h.send(event{Event: "error", Entry: id, Message: message})
}

// send performs one best-effort delivery attempt, spooling the event for
// deferred reconciliation when the controller is unreachable.
func (h *HTTP) send(ev event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Errorf("report %s: marshal: %v", ev.Event, err)
		return
	}

	if err := h.deliver(payload); err != nil {
		h.log.Warnf("report %s for entry %d: %v", ev.Event, ev.Entry, err)
		h.spool(ev)
		return
	}

	h.log.Debugf("reported %s for entry %d", ev.Event, ev.Entry)
}

// deliver posts one serialized event. A non-nil error means the delivery is
// worth retrying later; rejected events are logged and dropped.
func (h *HTTP) deliver(payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("controller: %s", resp.Status)
	}

	if resp.StatusCode >= 300 {
		h.log.Warnf("report rejected by controller: %s", resp.Status)
	}

	return nil
}

// ensure interface compliance
var _ Reporter = (*HTTP)(nil)

// String renders the reporter target for logs.
func (h *HTTP) String() string {
	return fmt.Sprintf("http reporter -> %s", h.endpoint)
}
