// Package version provides unified mechanisms for application version tracking, update discovery, and compatibility validation.
package version

import (
	"fmt"

	"github.com/kasha-player/kasha/color"
	"github.com/kasha-player/kasha/constant"
	"github.com/kasha-player/kasha/icon"
	"github.com/kasha-player/kasha/key"
	"github.com/kasha-player/kasha/style"
	"github.com/kasha-player/kasha/util"
	"github.com/spf13/viper"
)

// Notify displays a terminal alert if a more recent stable application version is available.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	version, err := Latest()
	erase()
	if err == nil {
		comp, err := Compare(version, constant.Version)
		if err == nil && comp <= 0 {
			return
		}
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		icon.Get(icon.Note),
		style.Fg(color.Green)(version),
		style.Faint(fmt.Sprintf("(You have %s)", constant.Version)),
		style.Faint("https://github.com/kasha-player/kasha/releases/latest"),
	)
}
