package backend

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// ipcRequest is one newline-delimited JSON command for mpv's IPC socket. The
// request id lets the reply be picked out of the stream of asynchronous
// events mpv pushes to every connected client.
type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// ipcReply is one line read back from the socket. A line with a non-empty
// Event is an asynchronous notification rather than a command reply.
type ipcReply struct {
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
	Event     string      `json:"event"`
	RequestID int64       `json:"request_id"`
}

const (
	// The player process idles between songs, so a dial failure usually
	// means it is still creating the socket. One short grace retry covers
	// that startup window; anything beyond it means the process is gone.
	sendAttempts   = 2
	dialRetryDelay = 250 * time.Millisecond
	replyDeadline  = 2 * time.Second
)

// sendCommand sends a JSON-IPC command to the player's Unix domain socket
// and waits for the matching reply. Serialized so replies cannot be
// attributed to the wrong command.
func (m *MPV) sendCommand(command []interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ipcSeq++
	req := ipcRequest{Command: command, RequestID: m.ipcSeq}

	var lastErr error
	for attempt := 0; attempt < sendAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(dialRetryDelay)
		}

		result, err := roundTrip(m.socketPath, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed: %w", lastErr)
}

// roundTrip performs a single command exchange: write one request line, then
// scan reply lines until the one carrying our request id, discarding the
// event notifications interleaved with it.
func roundTrip(socketPath string, req ipcRequest) (interface{}, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(replyDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var reply ipcReply
		if err := json.Unmarshal(scanner.Bytes(), &reply); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}

		if reply.Event != "" || reply.RequestID != req.RequestID {
			continue
		}

		if reply.Error != "" && reply.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", reply.Error)
		}
		return reply.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, errors.New("connection closed before reply")
}
