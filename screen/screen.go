// Package screen resolves the filler media shown when no song is playing.
//
// Two screens exist: the looped idle screen and the short transition screen
// played before each song to mask load latency. Resolution is a simple
// fallback lookup inside the configured screens directory.
package screen

import (
	"fmt"
	"path/filepath"

	"github.com/kasha-player/kasha/filesystem"
	"github.com/kasha-player/kasha/key"
	"github.com/kasha-player/kasha/where"
	"github.com/spf13/viper"
)

// Resolver locates idle and transition screen media on disk.
type Resolver struct {
	dir string
}

// NewResolver creates a resolver rooted at the configured screens directory,
// falling back to the default screens folder inside the config directory.
func NewResolver() *Resolver {
	dir := viper.GetString(key.ScreensDir)
	if dir == "" {
		dir = where.Screens()
	}
	return &Resolver{dir: dir}
}

// Dir returns the directory the resolver searches.
func (r *Resolver) Dir() string {
	return r.dir
}

// Idle resolves the idle screen media path.
func (r *Resolver) Idle() (string, error) {
	return r.resolve(viper.GetString(key.ScreensIdle))
}

// Transition resolves the transition screen media path.
func (r *Resolver) Transition() (string, error) {
	return r.resolve(viper.GetString(key.ScreensTransition))
}

func (r *Resolver) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("screen filename is empty")
	}

	// Absolute names bypass the screens directory.
	path := name
	if !filepath.IsAbs(name) {
		path = filepath.Join(r.dir, name)
	}

	exists, err := filesystem.API().Exists(path)
	if err != nil {
		return "", fmt.Errorf("stat screen %s: %w", path, err)
	}
	if !exists {
		return "", fmt.Errorf("screen media %s not found", path)
	}

	return path, nil
}
