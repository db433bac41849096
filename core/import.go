package core

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
)

// readingColumns is the CSV header accepted by ParseReadingsCSV.
var readingColumns = []string{"timestamp", "five_hour_util", "five_hour_resets_at", "seven_day_util", "seven_day_resets_at"}

// ImportReadings parses a CSV, JSON array or JSON-lines file of readings and
// stores them, skipping timestamps that are already present.
func ImportReadings(ctx context.Context, mgr contract.StoreManager, path string) (schema.ImportSummary, error) {
	summary := schema.ImportSummary{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return summary, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var readings []schema.Reading
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		readings, err = ParseReadingsCSV(f)
	case ".json":
		readings, err = ParseReadingsJSON(f)
	case ".jsonl", ".ndjson":
		readings, err = ParseReadingsJSONLines(f)
	default:
		return summary, fmt.Errorf("unsupported import format %q. must be .csv, .json, .jsonl", filepath.Ext(path))
	}
	if err != nil {
		return summary, err
	}
	summary.Parsed = len(readings)

	inserted, err := mgr.GetSampleStore().InsertReadings(ctx, readings)
	if err != nil {
		return summary, fmt.Errorf("failed to store readings: %w", err)
	}
	summary.Inserted = inserted
	return summary, nil
}

// ParseReadingsCSV reads readings from CSV with a header row. Columns are
// matched by name; missing or empty cells become nil.
func ParseReadingsCSV(r io.Reader) ([]schema.Reading, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index[readingColumns[0]]; !ok {
		return nil, fmt.Errorf("CSV header must contain %q (expected columns: %s)", readingColumns[0], strings.Join(readingColumns, ","))
	}
	cell := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var readings []schema.Reading
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		var rd schema.Reading
		var parseErr error
		if rd.Timestamp, parseErr = parseTimestamp(cell(record, "timestamp")); parseErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, parseErr)
		}
		if rd.FiveHourUtil, parseErr = parseOptionalFloat(cell(record, "five_hour_util")); parseErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, parseErr)
		}
		if rd.FiveHourResetsAt, parseErr = parseOptionalTimestamp(cell(record, "five_hour_resets_at")); parseErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, parseErr)
		}
		if rd.SevenDayUtil, parseErr = parseOptionalFloat(cell(record, "seven_day_util")); parseErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, parseErr)
		}
		if rd.SevenDayResetsAt, parseErr = parseOptionalTimestamp(cell(record, "seven_day_resets_at")); parseErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, parseErr)
		}
		readings = append(readings, rd)
	}
	return readings, nil
}

// ParseReadingsJSON reads a JSON array of readings.
func ParseReadingsJSON(r io.Reader) ([]schema.Reading, error) {
	var readings []schema.Reading
	if err := json.NewDecoder(r).Decode(&readings); err != nil {
		return nil, fmt.Errorf("failed to decode JSON readings: %w", err)
	}
	return readings, nil
}

// ParseReadingsJSONLines reads one JSON reading per line, skipping blank lines.
func ParseReadingsJSONLines(r io.Reader) ([]schema.Reading, error) {
	var readings []schema.Reading
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rd schema.Reading
		if err := json.Unmarshal([]byte(text), &rd); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		readings = append(readings, rd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}
	return readings, nil
}

// parseTimestamp accepts epoch milliseconds or RFC3339.
func parseTimestamp(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("timestamp is required")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: expected epoch milliseconds or RFC3339", s)
	}
	return t.UnixMilli(), nil
}

func parseOptionalTimestamp(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	ms, err := parseTimestamp(s)
	if err != nil {
		return nil, err
	}
	return &ms, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid utilization %q: %w", s, err)
	}
	return &v, nil
}
