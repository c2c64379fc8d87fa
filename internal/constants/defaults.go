package constants

// Default server configuration values
const (
	DefaultServerPort            = 8080
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	ServerErrorChannelSize       = 1
)

// Default provider and media configuration values
const (
	DefaultWhatsAppTimeoutSec   = 30
	DefaultMediaFetchTimeoutSec = 30
	DefaultMaxUploadSizeMB      = 100
	DefaultRetentionDays        = 30
)

// Default retry configuration values
const (
	DefaultInitialBackoffMs      = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultDatabaseRetryAttempts = 3
)

// Default console session values
const (
	DefaultSessionTTLHours      = 24
	DefaultCleanupIntervalHours = 24
)

// MaxMultipartMemoryBytes bounds the in-memory portion of media uploads.
const MaxMultipartMemoryBytes = 32 << 20
