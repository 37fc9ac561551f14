package backend

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"
)

// eventListener holds a persistent connection to mpv and translates its
// end-file notifications into Backend events.
type eventListener struct {
	socketPath string
	conn       net.Conn
	out        chan<- Event
	exited     <-chan struct{}
	stopCh     chan struct{}
	log        *logrus.Entry
	mu         sync.Mutex
	listening  bool
}

func newEventListener(socketPath string, out chan<- Event, exited <-chan struct{}, logger *logrus.Entry) *eventListener {
	return &eventListener{
		socketPath: socketPath,
		out:        out,
		exited:     exited,
		stopCh:     make(chan struct{}),
		log:        logger,
	}
}

// Start opens the persistent event connection and begins the read loop.
func (el *eventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	// Open a persistent connection for the event read loop. mpv pushes
	// end-file events to every connected client without subscription.
	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	el.conn = conn
	el.listening = true

	go el.readLoop()

	el.log.Infof("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop terminates the event listener.
func (el *eventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop continuously reads events from the persistent mpv connection.
// mpv sends newline-delimited JSON events.
func (el *eventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		case <-el.exited:
			return
		default:
		}

		// Set read deadline to avoid blocking forever
		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
				continue // timeout is normal, keep listening
			}
			el.log.Warnf("event listener read error: %v", err)
			return
		}

		// mpv sends multiple JSON objects separated by newlines
		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Last incomplete line goes to remainder for next read
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			el.processEvent(line)
		}
	}
}

// processEvent parses one mpv event line and forwards end-file notifications.
//
// mpv reports every playback termination as an end-file event whose reason
// field distinguishes a natural end ("eof") from interruptions ("stop",
// "quit") and failures ("error").
func (el *eventListener) processEvent(line string) {
	var event struct {
		Event     string `json:"event"`
		Reason    string `json:"reason"`
		FileError string `json:"file_error"`
	}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return // Skip unparseable lines
	}

	if event.Event != "end-file" {
		return
	}

	var out Event
	switch event.Reason {
	case "eof":
		out = Event{Kind: Ended, Reason: ReasonNormal}
	case "error":
		msg := event.FileError
		if msg == "" {
			msg = "playback error"
		}
		out = Event{Kind: Failed, Message: msg}
	default:
		// Interruptions and engine-specific reasons are forwarded verbatim;
		// the orchestrator decides whether they matter.
		out = Event{Kind: Ended, Reason: event.Reason}
	}

	select {
	case el.out <- out:
	default:
		el.log.Warnf("backend event dropped: consumer not keeping up")
	}
}
