package contract

import (
	"context"

	"github.com/huangsam/quotagraph/schema"
	"github.com/stretchr/testify/mock"
)

// MockSampleStore is a mock implementation of SampleStore for testing.
type MockSampleStore struct {
	mock.Mock
}

var _ SampleStore = &MockSampleStore{} // Compile-time check

// InsertReadings implements the SampleStore interface.
func (m *MockSampleStore) InsertReadings(ctx context.Context, readings []schema.Reading) (int, error) {
	args := m.Called(ctx, readings)
	return args.Int(0), args.Error(1)
}

// ListReadings implements the SampleStore interface.
func (m *MockSampleStore) ListReadings(ctx context.Context, startMs, endMs int64) ([]schema.Reading, error) {
	args := m.Called(ctx, startMs, endMs)
	readings, _ := args.Get(0).([]schema.Reading)
	return readings, args.Error(1)
}

// UpsertRollups implements the SampleStore interface.
func (m *MockSampleStore) UpsertRollups(ctx context.Context, rollups []schema.Rollup) error {
	args := m.Called(ctx, rollups)
	return args.Error(0)
}

// ListRollups implements the SampleStore interface.
func (m *MockSampleStore) ListRollups(ctx context.Context, res schema.Resolution, startMs, endMs int64) ([]schema.Rollup, error) {
	args := m.Called(ctx, res, startMs, endMs)
	rollups, _ := args.Get(0).([]schema.Rollup)
	return rollups, args.Error(1)
}

// DeleteReadingsBefore implements the SampleStore interface.
func (m *MockSampleStore) DeleteReadingsBefore(ctx context.Context, cutoffMs int64) (int64, error) {
	args := m.Called(ctx, cutoffMs)
	return args.Get(0).(int64), args.Error(1)
}

// GetStatus implements the SampleStore interface.
func (m *MockSampleStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the SampleStore interface.
func (m *MockSampleStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ StoreManager = &MockStoreManager{} // Compile-time check

// GetSampleStore implements the StoreManager interface.
func (m *MockStoreManager) GetSampleStore() SampleStore {
	ret := m.Called()
	store, _ := ret.Get(0).(SampleStore)
	return store
}
