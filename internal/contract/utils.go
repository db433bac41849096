package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/quotagraph/schema"
)

// Color variables for console output.
var (
	ExhaustedColor = color.New(color.FgRed, color.Bold)     // ExhaustedColor represents an emptied quota.
	CriticalColor  = color.New(color.FgMagenta, color.Bold) // CriticalColor represents strong, distinct warning.
	CautionColor   = color.New(color.FgYellow)              // CautionColor represents standard caution, not bold.
	HealthyColor   = color.New(color.FgGreen)               // HealthyColor represents ample headroom.
	SteepColor     = color.New(color.FgRed)
	RisingColor    = color.New(color.FgYellow)
)

// GetPlainLabel returns the capitalized headroom state for a utilization percentage.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(utilization float64) string {
	state := string(schema.ClassifyHeadroom(utilization))
	return strings.ToUpper(state[:1]) + state[1:]
}

// GetColorLabel returns a colored headroom label for console output (table).
func GetColorLabel(utilization float64) string {
	text := GetPlainLabel(utilization)
	switch schema.ClassifyHeadroom(utilization) {
	case schema.HeadroomExhausted:
		return ExhaustedColor.Sprint(text)
	case schema.HeadroomCritical:
		return CriticalColor.Sprint(text)
	case schema.HeadroomCaution:
		return CautionColor.Sprint(text)
	case schema.HeadroomHealthy:
		return HealthyColor.Sprint(text)
	}
	return text
}

// GetTrendLabel returns a trend arrow, colored when requested.
func GetTrendLabel(level schema.SlopeLevel, useColors bool) string {
	switch level {
	case schema.SlopeSteep:
		if useColors {
			return SteepColor.Sprint("steep ⇑")
		}
		return "steep ⇑"
	case schema.SlopeRising:
		if useColors {
			return RisingColor.Sprint("rising ↑")
		}
		return "rising ↑"
	case schema.SlopeFlat:
		return "flat →"
	}
	return string(level)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for sample history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".quotagraph_history.db"
	}
	return filepath.Join(homeDir, ".quotagraph_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
