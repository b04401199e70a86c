// Package constants provides shared constants used throughout the locsync codebase.
// This includes timeouts, limits, file permissions, and the defaults that mirror
// how ServiceNow and Infoblox are queried.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for requests to ServiceNow and Infoblox
	DefaultHTTPTimeout = 30 * time.Second

	// ShutdownTimeout bounds cleanup work after a failed run
	ShutdownTimeout = 5 * time.Second

	// MetricsPushTimeout bounds the Pushgateway upload at the end of a run
	MetricsPushTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for files that may carry infrastructure data (rw-------)
	SecureFilePermissions = 0600
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the number of immediate retries for idempotent requests
	MaxRetries = 2

	// EnumMaxLength is the maximum length Infoblox accepts for an enum value
	EnumMaxLength = 64

	// DefaultRecordLimit caps how many ServiceNow records a run reads
	DefaultRecordLimit = 10000

	// DefaultPageSize is the number of ServiceNow records requested per page
	DefaultPageSize = 1000

	// DefaultRateLimit is the number of requests per second sent to one system
	DefaultRateLimit = 10.0

	// DefaultRateBurst is the token bucket burst for DefaultRateLimit
	DefaultRateBurst = 5

	// MaxErrorBodyLength caps how much of a failed response body is kept in errors
	MaxErrorBodyLength = 2048
)

// Logging constants
const (
	// LogFileName is the name of the rotating log file inside the log directory
	LogFileName = "locsync.log"

	// DefaultLogDir is where the rotating log file is written unless configured
	DefaultLogDir = "."

	// LogRotationSizeMB is the maximum size of a log file before rotation
	LogRotationSizeMB = 5

	// LogRotationBackups is the maximum number of old log files to retain
	LogRotationBackups = 2
)

// Default values
const (
	// DefaultAttributeName is the Infoblox extensible attribute kept in sync
	DefaultAttributeName = "Location"

	// DefaultSourceTable is the ServiceNow table holding locations
	DefaultSourceTable = "cmn_location"

	// DefaultSourceQuery selects the location types mirrored into Infoblox
	DefaultSourceQuery = "cmn_location_typeINcountry,city,campus"

	// DefaultSourceField is the ServiceNow column read from each record
	DefaultSourceField = "name"

	// DefaultFlushPlaceholder is the single value left behind by a flush
	DefaultFlushPlaceholder = "CLEARED"

	// DefaultMetricsJob is the Pushgateway job name
	DefaultMetricsJob = "locsync"

	// UserAgent is sent with every request
	UserAgent = "locsync/1.0"
)

// Format constants
const (
	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)
