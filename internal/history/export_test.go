package history

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecuteHistoryExport(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, err := store.InsertReadings(ctx, minuteReadings(3))
	require.NoError(t, err)
	require.NoError(t, store.UpsertRollups(ctx, []schema.Rollup{{Resolution: schema.DailyResolution, PeriodStart: t0, PeriodEnd: t0 + 86_400_000}}))

	mgr := &contract.MockStoreManager{}
	mgr.On("GetSampleStore").Return(store)

	out := filepath.Join(t.TempDir(), "export")
	var buf bytes.Buffer
	require.NoError(t, ExecuteHistoryExport(ctx, &buf, mgr, out))

	assert.FileExists(t, out+".readings.parquet")
	assert.FileExists(t, out+".rollups.parquet")
	assert.Contains(t, buf.String(), "Exported 3 readings")
	assert.Contains(t, buf.String(), "Exported 1 rollups")
	mgr.AssertExpectations(t)
}

func TestExecuteHistoryExportErrors(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, ExecuteHistoryExport(ctx, &bytes.Buffer{}, &contract.MockStoreManager{}, ""))

	empty := &contract.MockSampleStore{}
	empty.On("GetStatus", mock.Anything).Return(schema.StoreStatus{Backend: "sqlite", Connected: true}, nil)
	mgr := &contract.MockStoreManager{}
	mgr.On("GetSampleStore").Return(empty)
	err := ExecuteHistoryExport(ctx, &bytes.Buffer{}, mgr, "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no history data")

	failing := &contract.MockSampleStore{}
	failing.On("GetStatus", mock.Anything).Return(schema.StoreStatus{}, errors.New("boom"))
	mgr = &contract.MockStoreManager{}
	mgr.On("GetSampleStore").Return(failing)
	assert.Error(t, ExecuteHistoryExport(ctx, &bytes.Buffer{}, mgr, "out"))
}
