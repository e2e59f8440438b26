// internal/api/v2/reports_test.go
package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ankitsingh711/AI-analytics/internal/datastore"
	"github.com/ankitsingh711/AI-analytics/internal/errors"
)

// newUploadRequest builds a multipart POST carrying the given bytes as the
// "file" form field.
func newUploadRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "report.json")
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/reports/upload", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestUploadReport(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	payload := map[string]any{
		"drone_id": "DRONE_A",
		"date":     "2024-01-01",
		"location": "ZoneA",
		"violations": []map[string]any{
			{
				"id":        "v1",
				"type":      "speeding",
				"timestamp": "10:00",
				"latitude":  28.61,
				"longitude": 77.20,
				"image_url": "http://img/v1.jpg",
			},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	mockDS.On("GetReportByDroneAndDate", "DRONE_A", "2024-01-01").Return(nil, nil)
	mockDS.On("CreateReportWithViolations", mock.AnythingOfType("*datastore.Report"), mock.Anything).
		Run(func(args mock.Arguments) {
			report := args.Get(0).(*datastore.Report)
			report.ID = 1
			report.CreatedAt = time.Now()
		}).
		Return(nil)

	rec := httptest.NewRecorder()
	ctx := e.NewContext(newUploadRequest(t, body), rec)

	require.NoError(t, controller.UploadReport(ctx))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, uint(1), response.ID)
	assert.Equal(t, "DRONE_A", response.DroneID)
	assert.Equal(t, "created", response.Outcome)
	assert.Equal(t, 1, response.Accepted)
	assert.Equal(t, 0, response.SkippedCount)
	require.Len(t, response.Violations, 1)
	assert.Equal(t, "v1", response.Violations[0].ViolationID)

	mockDS.AssertExpectations(t)
}

func TestUploadReportMissingLocation(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	payload := map[string]any{
		"drone_id":   "DRONE_A",
		"date":       "2024-01-01",
		"violations": []map[string]any{},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ctx := e.NewContext(newUploadRequest(t, body), rec)

	require.NoError(t, controller.UploadReport(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response.Error, "location")
	assert.NotEmpty(t, response.CorrelationID)

	// A structurally invalid payload must never touch the store.
	mockDS.AssertNotCalled(t, "GetReportByDroneAndDate", mock.Anything, mock.Anything)
	mockDS.AssertNotCalled(t, "CreateReportWithViolations", mock.Anything, mock.Anything)
}

func TestUploadReportMalformedJSON(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	rec := httptest.NewRecorder()
	ctx := e.NewContext(newUploadRequest(t, []byte("{not json")), rec)

	require.NoError(t, controller.UploadReport(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockDS.AssertNotCalled(t, "GetReportByDroneAndDate", mock.Anything, mock.Anything)
}

func TestUploadReportMissingFile(t *testing.T) {
	e, _, controller := setupTestEnvironment(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/reports/upload", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.UploadReport(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReports(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	summaries := []datastore.ReportSummary{
		{ID: 1, DroneID: "DRONE_A", Date: "2024-01-01", Location: "ZoneA", ViolationCount: 2},
		{ID: 2, DroneID: "DRONE_B", Date: "2024-01-01", Location: "ZoneB", ViolationCount: 0},
	}
	mockDS.On("ListReportSummaries").Return(summaries, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/reports", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.GetReports(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response []datastore.ReportSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, summaries, response)

	mockDS.AssertExpectations(t)
}

func TestGetReport(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	report := datastore.Report{
		ID:       1,
		DroneID:  "DRONE_A",
		Date:     "2024-01-01",
		Location: "ZoneA",
		Violations: []datastore.Violation{
			{ViolationID: "v1", Type: "speeding", Timestamp: "10:00", ReportID: 1},
		},
	}
	mockDS.On("GetReport", "1").Return(report, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/reports/1", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("1")

	require.NoError(t, controller.GetReport(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, uint(1), response.ID)
	require.Len(t, response.Violations, 1)
	assert.Equal(t, "v1", response.Violations[0].ViolationID)

	mockDS.AssertExpectations(t)
}

func TestGetReportNotFound(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	notFound := errors.Newf("report with ID 42 not found").
		Component("datastore").
		Category(errors.CategoryNotFound).
		Build()
	mockDS.On("GetReport", "42").Return(datastore.Report{}, notFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/reports/42", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("42")

	require.NoError(t, controller.GetReport(ctx))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestDeleteReport(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("DeleteReport", "1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v2/reports/1", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("1")

	require.NoError(t, controller.DeleteReport(ctx))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestDeleteReportNotFound(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	notFound := errors.Newf("report with ID 42 not found").
		Component("datastore").
		Category(errors.CategoryNotFound).
		Build()
	mockDS.On("DeleteReport", "42").Return(notFound)

	req := httptest.NewRequest(http.MethodDelete, "/api/v2/reports/42", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("42")

	require.NoError(t, controller.DeleteReport(ctx))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestResetReports(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("ResetAll").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/reports/reset", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.ResetReports(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestInternalErrorIsOpaque(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	dbErr := errors.Newf("dial tcp 10.0.0.5:3306: connect: connection refused").
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()
	mockDS.On("ListReportSummaries").Return([]datastore.ReportSummary(nil), dbErr)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/reports", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.GetReports(ctx))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "internal server error", response.Error, "backend details must not leak to clients")
	assert.NotContains(t, response.Error, "10.0.0.5")
	assert.NotEmpty(t, response.CorrelationID)
}
