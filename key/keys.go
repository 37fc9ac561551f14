// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Controller Server - these keys manage the connection to the remote karaoke controller.
const (
	ServerURL         = "server.url"
	ServerPollTimeout = "server.poll_timeout"
)

// Media Playback - these keys maintain the configuration for the local playback engine.
const (
	Player            = "player.default"
	PlayerStopTimeout = "player.stop_timeout"
)

// Screens - these keys locate the filler media shown between and instead of songs.
const (
	ScreensDir        = "screens.dir"
	ScreensIdle       = "screens.idle"
	ScreensTransition = "screens.transition"
)

// Iconography - these keys manage the visual rendering of CLI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-playback application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
