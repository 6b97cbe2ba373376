package config

// Application constants
const (
	// Application Info
	AppName     = "bodylab"
	AppVersion  = "1.0.0"
	ServiceName = "bodylab-api"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Request bodies
	DefaultMaxBodyBytes = 1 << 20 // 1MB

	// Log Settings
	DefaultLogLevel = "info"
)

// Build information, set with -ldflags at release time
var (
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)
