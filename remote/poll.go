package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kasha-player/kasha/constant"
	"github.com/kasha-player/kasha/key"
	"github.com/kasha-player/kasha/network"
	"github.com/kasha-player/kasha/playlist"
	"github.com/kasha-player/kasha/util"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const directiveBufferSize = 16

// message is the wire representation of one controller directive.
type message struct {
	Type    string          `json:"type"`
	Entry   *playlist.Entry `json:"entry,omitempty"`
	Command string          `json:"command,omitempty"`
}

// Poller long-polls the controller's player-queue endpoint and translates its
// JSON message stream into directives.
type Poller struct {
	endpoint   string
	token      string
	client     *http.Client
	directives chan Directive
	backoff    time.Duration
	log        *logrus.Entry
}

// NewPoller creates a poller against {baseURL}/api/player/queue with an
// optional bearer token.
func NewPoller(baseURL, token string, logger *logrus.Entry) *Poller {
	return &Poller{
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/api/player/queue",
		token:      token,
		client:     network.Client,
		directives: make(chan Directive, directiveBufferSize),
		backoff:    time.Second,
		log:        logger,
	}
}

// Directives returns the FIFO directive channel.
func (p *Poller) Directives() <-chan Directive {
	return p.directives
}

// Run polls until the context is cancelled. On transport failure it emits one
// ConnectionLost directive, then backs off and reconnects; the channel is
// closed on return.
func (p *Poller) Run(ctx context.Context) error {
	defer close(p.directives)

	connected := false
	backoff := p.backoff

	for {
		if ctx.Err() != nil {
			return nil
		}

		err := p.poll(ctx)
		if err == nil {
			if !connected {
				p.log.Infof("controller channel established: %s", p.endpoint)
			}
			connected = true
			backoff = p.backoff
			continue
		}

		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}

		p.log.Warnf("controller channel: %v", err)

		if connected {
			connected = false
			p.emit(ctx, Directive{Kind: ConnectionLost})
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// poll performs one long-poll round trip and forwards every decoded message.
func (p *Poller) poll(ctx context.Context) error {
	wait := util.Max(viper.GetInt(key.ServerPollTimeout), 1)
	url := fmt.Sprintf("%s?wait=%d", p.endpoint, wait)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	// 204 is the controller's "nothing happened during the wait window".
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("controller responded %s", resp.Status)
	}

	decoder := json.NewDecoder(resp.Body)
	for {
		var m message
		if err := decoder.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode message: %w", err)
		}

		d, err := translate(m)
		if err != nil {
			// Malformed single messages are dropped; the channel itself is healthy.
			p.log.Warnf("dropping controller message: %v", err)
			continue
		}

		p.emit(ctx, d)
	}
}

// translate normalizes one wire message into a directive.
func translate(m message) (Directive, error) {
	switch m.Type {
	case "idle":
		return Directive{Kind: Idle}, nil

	case "play":
		if m.Entry == nil {
			return Directive{}, errors.New("play message without entry")
		}
		if err := m.Entry.Validate(); err != nil {
			return Directive{}, err
		}
		return Directive{Kind: Play, Entry: m.Entry}, nil

	case "command":
		cmd, err := ParseCommand(m.Command)
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: Cmd, Command: cmd}, nil

	default:
		return Directive{}, fmt.Errorf("unknown message type %q", m.Type)
	}
}

func (p *Poller) emit(ctx context.Context, d Directive) {
	select {
	case p.directives <- d:
	case <-ctx.Done():
	}
}

var _ Source = (*Poller)(nil)
