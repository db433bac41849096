//go:build basic || database

package integration

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	// sharedQuotagraphPath holds the path to a shared quotagraph binary built once for all tests.
	sharedQuotagraphPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getQuotagraphBinary returns the path to the quotagraph binary, building it once if needed.
func getQuotagraphBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "quotagraph-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binPath := filepath.Join(tempDir, "quotagraph")
		buildCmd := exec.Command("go", "build", "-o", binPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build quotagraph: %v", err))
		}

		sharedQuotagraphPath = binPath
	})

	return sharedQuotagraphPath
}

// runQuotagraph runs the CLI with extra environment variables and returns stdout.
func runQuotagraph(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getQuotagraphBinary(), args...)
	cmd.Dir = t.TempDir()
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), output, stderr)
	}
	return string(output), err
}

// writeReadingsCSV writes one reading per minute for the last n minutes.
// The 5-hour window climbs one point per minute and resets halfway through.
func writeReadingsCSV(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readings.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write([]string{"timestamp", "five_hour_util", "five_hour_resets_at", "seven_day_util", "seven_day_resets_at"}))

	end := time.Now().Add(-time.Minute).Truncate(time.Minute)
	start := end.Add(-time.Duration(n-1) * time.Minute)
	firstReset := start.Add(time.Duration(n/2) * time.Minute)
	secondReset := firstReset.Add(5 * time.Hour)
	weekReset := start.Add(7 * 24 * time.Hour)
	for i := range n {
		ts := start.Add(time.Duration(i) * time.Minute)
		util, reset := i, firstReset
		if !ts.Before(firstReset) {
			util, reset = i-n/2, secondReset
		}
		require.NoError(t, w.Write([]string{
			strconv.FormatInt(ts.UnixMilli(), 10),
			strconv.Itoa(util),
			reset.UTC().Format(time.RFC3339),
			strconv.FormatFloat(20+float64(i)/10, 'f', 1, 64),
			strconv.FormatInt(weekReset.UnixMilli(), 10),
		}))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}
