// Package schema has configs, models and enumerations shared by all parts of quotagraph.
package schema

import "fmt"

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the sample history.
	DatabaseBackend string

	// Window represents a quota window that periodically resets.
	Window string

	// Resolution represents the granularity of a sample or aggregate.
	Resolution string

	// TimeRange represents one of the selectable chart ranges.
	TimeRange string

	// SlopeLevel is the ordinal trend of utilization at a sample.
	SlopeLevel string

	// HeadroomState classifies the remaining quota (100 - utilization).
	HeadroomState string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All quota windows tracked.
const (
	FiveHourWindow Window = "five_hour" // default
	SevenDayWindow Window = "seven_day"
)

// All resolutions, finest first.
const (
	RawResolution        Resolution = "raw"
	FiveMinuteResolution Resolution = "five_minute"
	HourlyResolution     Resolution = "hourly"
	DailyResolution      Resolution = "daily"
)

// All selectable time ranges.
const (
	Last24Hours TimeRange = "last_24h" // default
	Last7Days   TimeRange = "last_7d"
	Last30Days  TimeRange = "last_30d"
	AllTime     TimeRange = "all_time"
)

// Slope levels in increasing order of steepness.
const (
	SlopeFlat   SlopeLevel = "flat"
	SlopeRising SlopeLevel = "rising"
	SlopeSteep  SlopeLevel = "steep"
)

// Headroom states from most to least remaining quota.
const (
	HeadroomHealthy   HeadroomState = "healthy"
	HeadroomCaution   HeadroomState = "caution"
	HeadroomCritical  HeadroomState = "critical"
	HeadroomExhausted HeadroomState = "exhausted"
)

// AllWindows lists every tracked window.
var AllWindows = []Window{FiveHourWindow, SevenDayWindow}

// AllResolutions lists every resolution from finest to coarsest.
var AllResolutions = []Resolution{RawResolution, FiveMinuteResolution, HourlyResolution, DailyResolution}

// AllTimeRanges lists every selectable range.
var AllTimeRanges = []TimeRange{Last24Hours, Last7Days, Last30Days, AllTime}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// UnknownEnumError reports a value outside of a declared enumeration.
type UnknownEnumError struct {
	Kind  string
	Value string
}

func (e *UnknownEnumError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Value)
}
