// Package main is the entry point for the kasha playback client.
package main

import (
	"github.com/kasha-player/kasha/cmd"
	"github.com/kasha-player/kasha/config"
	"github.com/kasha-player/kasha/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
