// Package config loads roadsplit settings from a YAML file, ROADSPLIT_*
// environment variables, and built-in defaults.
package config

import "time"

// Ledger defaults.
const (
	DefaultMaxSections   = 10000
	DefaultJournal       = ""
	DefaultSnapshotDir   = ""
	DefaultSnapshotCodec = "json"
	DefaultQueryCache    = 1 << 20
)

// Server defaults.
const (
	DefaultServerHost   = "127.0.0.1"
	DefaultServerPort   = 8080
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	DefaultIdleTimeout  = 120 * time.Second
)

// Output defaults.
const (
	DefaultOutputFormat = "text"
	DefaultOutputColor  = ColorAuto
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
	DefaultSampleRatio  = 1.0
	DefaultEnvironment  = ""
)
