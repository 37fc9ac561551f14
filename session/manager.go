// Package session wires the playback client together: one backend, one
// reporter, one command source, one orchestrator. The manager owns their
// lifetimes and never participates in runtime playback decisions.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/kasha-player/kasha/auth"
	"github.com/kasha-player/kasha/backend"
	"github.com/kasha-player/kasha/key"
	"github.com/kasha-player/kasha/log"
	"github.com/kasha-player/kasha/playback"
	"github.com/kasha-player/kasha/remote"
	"github.com/kasha-player/kasha/report"
	"github.com/kasha-player/kasha/screen"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Manager composes the four playback components and runs them as one unit.
type Manager struct {
	backend      backend.Backend
	reporter     *report.HTTP
	poller       *remote.Poller
	orchestrator *playback.Orchestrator
	log          *logrus.Entry
}

// New constructs every component exactly once. The server URL must already be
// configured; the controller token is taken from the system keyring when
// present.
func New() (*Manager, error) {
	logger := log.Component("session")

	serverURL := viper.GetString(key.ServerURL)
	if serverURL == "" {
		return nil, fmt.Errorf("no controller server configured (set %s)", key.ServerURL)
	}

	token, err := auth.GetToken()
	if err != nil {
		// An absent token is normal for open controllers.
		logger.Debugf("no controller token in keyring: %v", err)
		token = ""
	}

	b, err := backend.New(viper.GetString(key.Player), log.Component("backend"))
	if err != nil {
		return nil, fmt.Errorf("create media backend: %w", err)
	}

	reporter := report.NewHTTP(serverURL, token, log.Component("report"))
	poller := remote.NewPoller(serverURL, token, log.Component("remote"))
	orchestrator := playback.New(b, reporter, screen.NewResolver(), poller.Directives(), log.Component("playback"))

	return &Manager{
		backend:      b,
		reporter:     reporter,
		poller:       poller,
		orchestrator: orchestrator,
		log:          logger,
	}, nil
}

// Run blocks until the context is cancelled, then tears the session down.
func (m *Manager) Run(ctx context.Context) error {
	m.log.Infof("session starting against %s", viper.GetString(key.ServerURL))

	// Flush any lifecycle reports left over from a previous run.
	m.reporter.ReconcileDeferred()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_ = m.poller.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		_ = m.orchestrator.Run(ctx)
	}()

	wg.Wait()

	if err := m.backend.Close(); err != nil {
		m.log.Warnf("backend close: %v", err)
	}

	m.log.Infof("session stopped")
	return nil
}
