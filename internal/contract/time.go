package contract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeTimeRe captures "N [units] ago", e.g. "2 days ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(week|day|hour|minute)s?\s+ago$`)

// lookbackDurationRe captures "N [units]", e.g. "7 days".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(week|day|hour|minute)s?$`)

// unitDuration maps a human unit onto a fixed-length duration.
func unitDuration(unit string) (time.Duration, error) {
	switch unit {
	case "week":
		return 7 * 24 * time.Hour, nil
	case "day":
		return 24 * time.Hour, nil
	case "hour":
		return time.Hour, nil
	case "minute":
		return time.Minute, nil
	default:
		return 0, fmt.Errorf("unsupported time unit: %s", unit)
	}
}

// ParseRelativeTime converts strings like "3 hours ago" into a time before now.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}
	value, _ := strconv.Atoi(matches[1])
	unit, err := unitDuration(matches[2])
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-time.Duration(value) * unit), nil
}

// ParseLookbackDuration converts strings like "7 days" or "168h" into a time.Duration.
// Go duration syntax is tried first, then the human-readable form.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return duration, nil
	}

	s = strings.ToLower(s)
	matches := lookbackDurationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}
	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %w", err)
	}
	unit, err := unitDuration(matches[2])
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, errors.New("duration must be positive")
	}
	if value > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("duration too large: %s", s)
	}
	return time.Duration(value) * unit, nil
}

// ParseAnchorTime parses an RFC3339 timestamp or a relative "N [units] ago".
func ParseAnchorTime(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339 or 'N [units] ago' for %q", s)
	}
	return t, nil
}
