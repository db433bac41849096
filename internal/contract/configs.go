package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/quotagraph/core/chart"
	"github.com/huangsam/quotagraph/schema"
)

// Default values for configuration.
const (
	DefaultChartWidth      = 600.0
	DefaultChartHeight     = 200.0
	DefaultPollIntervalSec = 60
	DefaultPrecision       = 1
	DefaultRollupAfter     = 7 * 24 * time.Hour
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for charting and aggregation.
// This struct remains the "final, validated" config.
type Config struct {
	Window     schema.Window
	Range      schema.TimeRange
	Resolution schema.Resolution // bar resolution; derived from Range unless overridden
	StartTime  time.Time         // zero for all_time
	EndTime    time.Time
	Location   *time.Location

	Width           float64
	Height          float64
	PollIntervalSec int
	MinSegment      time.Duration
	Reset           chart.ResetPolicy
	Slope           chart.SlopePolicy

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	TermWidth  int // Terminal width override (0 = auto-detect)
	UseColors  bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	RollupAfter time.Duration
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Window           string `mapstructure:"window"`
	Range            string `mapstructure:"range"`
	End              string `mapstructure:"end"`
	Timezone         string `mapstructure:"timezone"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	TableWidth       int    `mapstructure:"table-width"`
	Color            string `mapstructure:"color"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from chartCmd.Flags() ---
	Width        float64 `mapstructure:"width"`
	Height       float64 `mapstructure:"height"`
	PollInterval int     `mapstructure:"poll-interval"`
	MinSegment   string  `mapstructure:"min-segment"`

	// --- Fields from barsCmd.Flags() ---
	Resolution string `mapstructure:"resolution"`

	// --- Fields from storeRollupCmd.Flags() ---
	RollupAfter string `mapstructure:"rollup-after"`

	// --- Heuristic overrides from config file ---
	Heuristics HeuristicsRawInput `mapstructure:"heuristics"`
}

// HeuristicsRawInput holds optional overrides for reset and slope detection.
type HeuristicsRawInput struct {
	JitterTolerance *string  `mapstructure:"jitter_tolerance"`
	DropFraction    *float64 `mapstructure:"drop_fraction"`
	SlopeWindow     *string  `mapstructure:"slope_window"`
	RisingPerMinute *float64 `mapstructure:"rising_per_minute"`
	SteepPerMinute  *float64 `mapstructure:"steep_per_minute"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithRange creates a copy of the Config scoped to another time range.
// The bar resolution follows the new range.
func (c *Config) CloneWithRange(tr schema.TimeRange) *Config {
	clone := c.Clone()
	clone.Range = tr
	clone.Resolution = tr.BarResolution()
	clone.StartTime = rangeStart(tr, clone.EndTime)
	return clone
}

// ChartOptions translates the config into chart engine options.
func (c *Config) ChartOptions() chart.Options {
	opts := chart.DefaultOptions(c.Width, c.Height, c.PollIntervalSec)
	opts.RangeStartMs = c.StartMs()
	opts.RangeEndMs = c.EndTime.UnixMilli()
	if c.MinSegment > 0 {
		opts.MinSegmentMs = c.MinSegment.Milliseconds()
	}
	opts.Reset = c.Reset
	opts.Slope = c.Slope
	return opts
}

// StartMs returns the range start in epoch milliseconds, zero when unbounded.
func (c *Config) StartMs() int64 {
	if c.StartTime.IsZero() {
		return 0
	}
	return c.StartTime.UnixMilli()
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, now); err != nil {
		return err
	}
	if err := processChartGeometry(cfg, input); err != nil {
		return err
	}
	if err := processHeuristics(cfg, input); err != nil {
		return err
	}
	return processRollup(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.TermWidth = input.TableWidth

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("parquet output requires --output-file")
	}

	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// processTimeRange resolves the window, range, resolution and timezone.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	window, err := schema.ParseWindow(input.Window)
	if err != nil {
		return fmt.Errorf("invalid --window: %w", err)
	}
	cfg.Window = window

	tr, err := schema.ParseTimeRange(input.Range)
	if err != nil {
		return fmt.Errorf("invalid --range: %w", err)
	}
	cfg.Range = tr

	cfg.Resolution = tr.BarResolution()
	if input.Resolution != "" {
		res, err := schema.ParseResolution(input.Resolution)
		if err != nil {
			return fmt.Errorf("invalid --resolution: %w", err)
		}
		cfg.Resolution = res
	}

	cfg.Location = time.Local
	if input.Timezone != "" {
		loc, err := time.LoadLocation(input.Timezone)
		if err != nil {
			return fmt.Errorf("invalid --timezone %q: %w", input.Timezone, err)
		}
		cfg.Location = loc
	}

	cfg.EndTime = now
	if input.End != "" {
		end, err := ParseAnchorTime(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		if end.After(now) {
			return fmt.Errorf("end time (%s) cannot be in the future", end.Format(DateTimeFormat))
		}
		cfg.EndTime = end
	}
	cfg.StartTime = rangeStart(tr, cfg.EndTime)
	return nil
}

// rangeStart returns the start of a range ending at end, zero for all_time.
func rangeStart(tr schema.TimeRange, end time.Time) time.Time {
	lookback := tr.Lookback()
	if lookback == 0 {
		return time.Time{}
	}
	return end.Add(-lookback)
}

// processChartGeometry validates the display size and sampling cadence.
func processChartGeometry(cfg *Config, input *ConfigRawInput) error {
	if input.Width <= 0 || input.Height <= 0 {
		return fmt.Errorf("width and height must be greater than 0 (received %gx%g)", input.Width, input.Height)
	}
	cfg.Width = input.Width
	cfg.Height = input.Height

	if input.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be greater than 0 (received %d)", input.PollInterval)
	}
	cfg.PollIntervalSec = input.PollInterval

	cfg.MinSegment = time.Duration(chart.DefaultMinSegmentMs) * time.Millisecond
	if input.MinSegment != "" {
		d, err := ParseLookbackDuration(input.MinSegment)
		if err != nil {
			return fmt.Errorf("invalid --min-segment: %w", err)
		}
		cfg.MinSegment = d
	}
	return nil
}

// processHeuristics applies config-file overrides on top of the default policies.
func processHeuristics(cfg *Config, input *ConfigRawInput) error {
	h := input.Heuristics
	cfg.Reset = chart.DefaultResetPolicy()
	cfg.Slope = chart.DefaultSlopePolicy()

	if h.JitterTolerance != nil {
		d, err := time.ParseDuration(*h.JitterTolerance)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid heuristics.jitter_tolerance %q", *h.JitterTolerance)
		}
		cfg.Reset.JitterToleranceMs = d.Milliseconds()
	}
	if h.DropFraction != nil {
		if *h.DropFraction <= 0 || *h.DropFraction >= 1 {
			return fmt.Errorf("heuristics.drop_fraction must be between 0 and 1 (received %g)", *h.DropFraction)
		}
		cfg.Reset.DropFraction = *h.DropFraction
	}
	if h.SlopeWindow != nil {
		d, err := ParseLookbackDuration(*h.SlopeWindow)
		if err != nil {
			return fmt.Errorf("invalid heuristics.slope_window: %w", err)
		}
		cfg.Slope.WindowMs = d.Milliseconds()
	}
	if h.RisingPerMinute != nil {
		cfg.Slope.RisingPerMinute = *h.RisingPerMinute
	}
	if h.SteepPerMinute != nil {
		cfg.Slope.SteepPerMinute = *h.SteepPerMinute
	}
	if cfg.Slope.RisingPerMinute <= 0 || cfg.Slope.SteepPerMinute < cfg.Slope.RisingPerMinute {
		return fmt.Errorf("slope thresholds must satisfy 0 < rising (%g) <= steep (%g)",
			cfg.Slope.RisingPerMinute, cfg.Slope.SteepPerMinute)
	}
	return nil
}

// processRollup resolves the age past which raw readings are compacted.
func processRollup(cfg *Config, input *ConfigRawInput) error {
	cfg.RollupAfter = DefaultRollupAfter
	if input.RollupAfter == "" {
		return nil
	}
	d, err := ParseLookbackDuration(input.RollupAfter)
	if err != nil {
		return fmt.Errorf("invalid --rollup-after: %w", err)
	}
	cfg.RollupAfter = d
	return nil
}
