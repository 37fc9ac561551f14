package backend

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	eventBufferSize   = 16
)

// MPV implements the Backend interface using mpv's JSON-IPC protocol.
//
// One mpv process is started at construction with --idle=yes and kept alive
// for the whole session; successive Play calls load new files into it. This
// keeps the video window open between songs so the screen never goes blank.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	events     chan Event
	listener   *eventListener
	log        *logrus.Entry
	mu         sync.Mutex // protects socket writes
	ipcSeq     int64      // request id counter, guarded by mu
}

// NewMPV starts a persistent idle mpv process and connects its event channel.
func NewMPV(logger *logrus.Entry) (*MPV, error) {
	m := &MPV{
		exited: make(chan struct{}),
		events: make(chan Event, eventBufferSize),
		log:    logger,
	}

	if err := m.start(); err != nil {
		return nil, err
	}

	return m, nil
}

// start spawns the mpv process and waits for its IPC socket.
func (m *MPV) start() error {
	// Generate a random socket path using os.TempDir() for cross-platform support
	// (macOS $TMPDIR is /var/folders/... not /tmp/)
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("kasha-%x.sock", randomBytes))

	// Build mpv arguments. The process idles between loads so the video
	// window survives media swaps.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=no",
		"--fullscreen",
	}

	m.cmd = exec.Command("mpv", args...)

	// Detach from parent process group to prevent cascading shell panics.
	m.cmd.SysProcAttr = sysProcAttr()

	// Disable standard pipes to prevent resource leaks.
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Background goroutine to reap the process and prevent zombies
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	// Wait for the IPC socket to become available
	if err := m.waitForSocket(); err != nil {
		// If socket never became ready, kill the orphaned process
		if m.cmd.Process != nil {
			select {
			case <-m.exited:
				// Already exited
			default:
				m.log.Warnf("killing mpv: socket never became ready")
				_ = m.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newEventListener(m.socketPath, m.events, m.exited, m.log)
	if err := m.listener.Start(); err != nil {
		_ = m.Close()
		return fmt.Errorf("mpv event listener: %w", err)
	}

	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		// Check if process already exited
		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// Play loads the given media into the running mpv instance, replacing the
// current one.
func (m *MPV) Play(media Media) error {
	safeTarget, err := sanitizeMediaTarget(media.Path)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if title := sanitizeTitle(media.Title); title != "" {
		if _, err := m.sendCommand([]interface{}{"set_property", "force-media-title", title}); err != nil {
			m.log.Warnf("set media title: %v", err)
		}
	}

	if _, err := m.sendCommand([]interface{}{"loadfile", safeTarget, "replace"}); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}

	return nil
}

// Pause suspends or resumes the current playback.
func (m *MPV) Pause(paused bool) error {
	_, err := m.sendCommand([]interface{}{"set_property", "pause", paused})
	return err
}

// Stop interrupts the current playback. mpv returns to its idle state and
// emits an end-file event with reason "stop", which the orchestrator ignores.
func (m *MPV) Stop() error {
	_, err := m.sendCommand([]interface{}{"stop"})
	return err
}

// Timing returns the current playback position in whole seconds, or 0 when
// nothing meaningful is playing (idle screen, mid-load, or unavailable).
func (m *MPV) Timing() int {
	data, err := m.sendCommand([]interface{}{"get_property", "time-pos"})
	if err != nil {
		// "property unavailable" means nothing is loaded — valid state
		return 0
	}

	pos, ok := data.(float64)
	if !ok || pos < 0 {
		return 0
	}
	return int(pos)
}

// Events returns the engine's end-of-media and error notification channel.
func (m *MPV) Events() <-chan Event {
	return m.events
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.listener != nil {
		m.listener.Stop()
	}

	if m.socketPath == "" {
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand([]interface{}{"quit"})

	// Wait for process to exit (with timeout)
	select {
	case <-m.exited:
		// Clean exit
	case <-time.After(3 * time.Second):
		// Force kill if graceful quit didn't work
		_ = killProcess(m.cmd)
	}

	// Clean up the socket file
	_ = os.Remove(m.socketPath)

	return nil
}

// sanitizeMediaTarget validates that a locator is safe to pass to mpv.
// Prevents flag injection from controller-supplied strings.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty media locator")
	}

	// Reject control characters
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in media locator")
	}

	// Prevent flag injection: locators must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("media locator must not start with '-' (looks like a flag)")
	}

	// If it contains "://", validate as URL
	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}

// sanitizeTitle cleans up the title for mpv.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	// Remove null bytes
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
