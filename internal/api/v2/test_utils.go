// internal/api/v2/test_utils.go
package api

import (
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ankitsingh711/AI-analytics/internal/conf"
	"github.com/ankitsingh711/AI-analytics/internal/datastore"
)

// MockDataStore implements datastore.Interface for testing handlers without
// a real database.
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

// setupTestEnvironment creates a test environment with Echo, a mock
// datastore and the controller wired against it. Routes are not registered;
// tests invoke handlers directly with contexts they build.
func setupTestEnvironment(t *testing.T) (*echo.Echo, *MockDataStore, *Controller) {
	t.Helper()

	e := echo.New()
	mockDS := new(MockDataStore)

	settings := &conf.Settings{}
	settings.WebServer.Debug = true
	settings.WebServer.Enabled = true
	settings.WebServer.Port = "8000"

	controller, err := NewWithOptions(e, mockDS, settings, nil, false)
	require.NoError(t, err, "creating test controller")
	t.Cleanup(controller.Shutdown)

	return e, mockDS, controller
}
