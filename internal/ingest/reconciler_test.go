// reconciler_test.go: tests for the report ingestion reconciler
package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ankitsingh711/AI-analytics/internal/datastore"
	"github.com/ankitsingh711/AI-analytics/internal/errors"
)

// MockDataStore implements datastore.Interface for reconciler tests
type MockDataStore struct {
	mock.Mock
}

func (m *MockDataStore) Open() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) GetReportByDroneAndDate(droneID, date string) (*datastore.Report, error) {
	args := m.Called(droneID, date)
	report, _ := args.Get(0).(*datastore.Report)
	return report, args.Error(1)
}

func (m *MockDataStore) CreateReportWithViolations(report *datastore.Report, violations []datastore.Violation) error {
	args := m.Called(report, violations)
	return args.Error(0)
}

func (m *MockDataStore) ReplaceReportViolations(reportID uint, violations []datastore.Violation) error {
	args := m.Called(reportID, violations)
	return args.Error(0)
}

func (m *MockDataStore) GetReport(id string) (datastore.Report, error) {
	args := m.Called(id)
	return args.Get(0).(datastore.Report), args.Error(1)
}

func (m *MockDataStore) DeleteReport(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDataStore) ResetAll() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) CountViolations() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataStore) CountViolationsByType() (map[string]int64, error) {
	args := m.Called()
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockDataStore) GetDistinctDrones() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataStore) GetDistinctLocations() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataStore) GetDistinctTypes() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataStore) GetDistinctDates() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataStore) GetRecentViolations(limit int) ([]datastore.ViolationDetail, error) {
	args := m.Called(limit)
	return args.Get(0).([]datastore.ViolationDetail), args.Error(1)
}

func (m *MockDataStore) SearchViolations(filters datastore.ViolationFilters) ([]datastore.ViolationDetail, error) {
	args := m.Called(filters)
	return args.Get(0).([]datastore.ViolationDetail), args.Error(1)
}

func (m *MockDataStore) ListReportSummaries() ([]datastore.ReportSummary, error) {
	args := m.Called()
	return args.Get(0).([]datastore.ReportSummary), args.Error(1)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func validEntry(id string) ViolationEntry {
	return ViolationEntry{
		ID:        strPtr(id),
		Type:      strPtr("speeding"),
		Timestamp: strPtr("10:00"),
		Latitude:  floatPtr(1.0),
		Longitude: floatPtr(2.0),
		ImageURL:  strPtr("http://x/1.jpg"),
	}
}

func TestReconcileCreatesNewReport(t *testing.T) {
	mockDS := new(MockDataStore)
	reconciler := New(mockDS)

	payload := &ReportPayload{
		DroneID:    "D1",
		Date:       "2024-01-01",
		Location:   "ZoneA",
		Violations: []ViolationEntry{validEntry("v1")},
	}

	mockDS.On("GetReportByDroneAndDate", "D1", "2024-01-01").Return(nil, nil)
	mockDS.On("CreateReportWithViolations", mock.AnythingOfType("*datastore.Report"), mock.Anything).
		Run(func(args mock.Arguments) {
			report := args.Get(0).(*datastore.Report)
			report.ID = 7
			report.CreatedAt = time.Now()
		}).
		Return(nil)

	result, err := reconciler.Reconcile(payload)
	require.NoError(t, err)
	assert.Equal(t, uint(7), result.ReportID)
	assert.Equal(t, OutcomeCreated, result.Outcome)
	assert.Equal(t, "ZoneA", result.Location)
	assert.Equal(t, 1, result.Accepted)
	assert.Empty(t, result.Skipped)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "v1", result.Violations[0].ViolationID)

	mockDS.AssertExpectations(t)
	mockDS.AssertNotCalled(t, "ReplaceReportViolations", mock.Anything, mock.Anything)
}

func TestReconcileReusesExistingReport(t *testing.T) {
	mockDS := new(MockDataStore)
	reconciler := New(mockDS)

	createdAt := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	existing := &datastore.Report{
		ID:        3,
		DroneID:   "D1",
		Date:      "2024-01-01",
		Location:  "ZoneA",
		CreatedAt: createdAt,
	}

	// The payload carries a different location; the stored one must win.
	payload := &ReportPayload{
		DroneID:    "D1",
		Date:       "2024-01-01",
		Location:   "ZoneB",
		Violations: []ViolationEntry{validEntry("v2"), validEntry("v3")},
	}

	mockDS.On("GetReportByDroneAndDate", "D1", "2024-01-01").Return(existing, nil)
	mockDS.On("ReplaceReportViolations", uint(3), mock.Anything).Return(nil)

	result, err := reconciler.Reconcile(payload)
	require.NoError(t, err)
	assert.Equal(t, uint(3), result.ReportID)
	assert.Equal(t, OutcomeReused, result.Outcome)
	assert.Equal(t, createdAt, result.CreatedAt)
	assert.Equal(t, "ZoneA", result.Location, "existing location must not be overwritten")
	assert.Equal(t, 2, result.Accepted)

	mockDS.AssertExpectations(t)
	mockDS.AssertNotCalled(t, "CreateReportWithViolations", mock.Anything, mock.Anything)
}

func TestReconcileEmptyViolationsClearsSet(t *testing.T) {
	mockDS := new(MockDataStore)
	reconciler := New(mockDS)

	existing := &datastore.Report{ID: 5, DroneID: "D1", Date: "2024-01-01", Location: "ZoneA"}

	payload := &ReportPayload{
		DroneID:    "D1",
		Date:       "2024-01-01",
		Location:   "ZoneA",
		Violations: []ViolationEntry{},
	}

	mockDS.On("GetReportByDroneAndDate", "D1", "2024-01-01").Return(existing, nil)
	mockDS.On("ReplaceReportViolations", uint(5), mock.MatchedBy(func(violations []datastore.Violation) bool {
		return len(violations) == 0
	})).Return(nil)

	result, err := reconciler.Reconcile(payload)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Accepted)
	assert.Empty(t, result.Violations)

	mockDS.AssertExpectations(t)
}

func TestReconcileSkipsMalformedEntries(t *testing.T) {
	mockDS := new(MockDataStore)
	reconciler := New(mockDS)

	// Second entry is missing latitude; it must be skipped, not abort the upload.
	malformed := validEntry("v2")
	malformed.Latitude = nil

	payload := &ReportPayload{
		DroneID:    "D1",
		Date:       "2024-01-01",
		Location:   "ZoneA",
		Violations: []ViolationEntry{validEntry("v1"), malformed, validEntry("v3")},
	}

	mockDS.On("GetReportByDroneAndDate", "D1", "2024-01-01").Return(nil, nil)
	mockDS.On("CreateReportWithViolations", mock.Anything, mock.MatchedBy(func(violations []datastore.Violation) bool {
		return len(violations) == 2
	})).Return(nil)

	result, err := reconciler.Reconcile(payload)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 1, result.Skipped[0].Index)
	assert.Contains(t, result.Skipped[0].Reason, "latitude")

	mockDS.AssertExpectations(t)
}

func TestReconcileConflictRetry(t *testing.T) {
	mockDS := new(MockDataStore)
	reconciler := New(mockDS)

	payload := &ReportPayload{
		DroneID:    "D1",
		Date:       "2024-01-01",
		Location:   "ZoneA",
		Violations: []ViolationEntry{validEntry("v1")},
	}

	conflictErr := errors.Newf("duplicate key").
		Component("datastore").
		Category(errors.CategoryConflict).
		Build()

	winner := &datastore.Report{ID: 9, DroneID: "D1", Date: "2024-01-01", Location: "ZoneA"}

	// First lookup sees no report, the create loses the race, the second
	// lookup finds the winner and the upload reconciles against it.
	mockDS.On("GetReportByDroneAndDate", "D1", "2024-01-01").Return(nil, nil).Once()
	mockDS.On("CreateReportWithViolations", mock.Anything, mock.Anything).Return(conflictErr).Once()
	mockDS.On("GetReportByDroneAndDate", "D1", "2024-01-01").Return(winner, nil).Once()
	mockDS.On("ReplaceReportViolations", uint(9), mock.Anything).Return(nil).Once()

	result, err := reconciler.Reconcile(payload)
	require.NoError(t, err)
	assert.Equal(t, uint(9), result.ReportID)
	assert.Equal(t, OutcomeConflictRetried, result.Outcome)

	mockDS.AssertExpectations(t)
}

func TestReconcilePersistenceErrorPropagates(t *testing.T) {
	mockDS := new(MockDataStore)
	reconciler := New(mockDS)

	payload := &ReportPayload{
		DroneID:    "D1",
		Date:       "2024-01-01",
		Location:   "ZoneA",
		Violations: []ViolationEntry{validEntry("v1")},
	}

	dbErr := errors.Newf("disk full").
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()

	mockDS.On("GetReportByDroneAndDate", "D1", "2024-01-01").Return(nil, nil)
	mockDS.On("CreateReportWithViolations", mock.Anything, mock.Anything).Return(dbErr)

	result, err := reconciler.Reconcile(payload)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))

	mockDS.AssertExpectations(t)
}
