// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Kasha is the canonical application identifier used for filesystem paths and CLI branding.
	Kasha = "kasha"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the HTTP User-Agent string presented to the karaoke controller server.
	UserAgent = Kasha + "/" + Version
)
