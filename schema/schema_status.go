package schema

import "time"

// StoreStatus holds status information about the sample history store.
type StoreStatus struct {
	Backend        string
	Connected      bool
	TotalReadings  int
	OldestReading  time.Time
	LatestReading  time.Time
	RollupCounts   map[Resolution]int
	SchemaVersion  uint
	SchemaIsDirty  bool
	TableSizeBytes int64
}

// RollupSummary reports what a rollup pass compacted.
type RollupSummary struct {
	Cutoff          time.Time `json:"cutoff"`
	ReadingsRolled  int       `json:"readings_rolled"`
	HourlyRollups   int       `json:"hourly_rollups"`
	DailyRollups    int       `json:"daily_rollups"`
	ReadingsDeleted int64     `json:"readings_deleted"`
}

// ImportSummary reports the outcome of ingesting a readings file.
type ImportSummary struct {
	Path     string `json:"path"`
	Parsed   int    `json:"parsed"`
	Inserted int    `json:"inserted"`
}
