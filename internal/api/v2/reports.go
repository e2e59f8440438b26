// internal/api/v2/reports.go
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ankitsingh711/AI-analytics/internal/datastore"
	"github.com/ankitsingh711/AI-analytics/internal/ingest"
)

// maxUploadBytes caps the accepted report file size.
const maxUploadBytes = 10 << 20 // 10 MiB

// UploadResponse is returned for a successful report upload.
type UploadResponse struct {
	ID           uint                  `json:"id"`
	DroneID      string                `json:"drone_id"`
	Date         string                `json:"date"`
	Location     string                `json:"location"`
	CreatedAt    string                `json:"created_at"`
	Outcome      string                `json:"outcome"`
	Accepted     int                   `json:"accepted_count"`
	SkippedCount int                   `json:"skipped_count"`
	Skipped      []ingest.SkippedEntry `json:"skipped,omitempty"`
	Violations   []ViolationResponse   `json:"violations"`
}

// ViolationResponse is one stored violation in API responses.
type ViolationResponse struct {
	ViolationID string  `json:"violation_id"`
	Type        string  `json:"type"`
	Timestamp   string  `json:"timestamp"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageURL    string  `json:"image_url"`
	ReportID    uint    `json:"report_id"`
}

// ReportResponse is a single report with its violations.
type ReportResponse struct {
	ID         uint                `json:"id"`
	DroneID    string              `json:"drone_id"`
	Date       string              `json:"date"`
	Location   string              `json:"location"`
	CreatedAt  string              `json:"created_at"`
	Violations []ViolationResponse `json:"violations"`
}

// initReportRoutes registers all report-related API endpoints
func (c *Controller) initReportRoutes() {
	reportsGroup := c.Group.Group("/reports")
	reportsGroup.POST("/upload", c.UploadReport)
	reportsGroup.POST("/reset", c.ResetReports)
	reportsGroup.GET("", c.GetReports)
	reportsGroup.GET("/:id", c.GetReport)
	reportsGroup.DELETE("/:id", c.DeleteReport)
}

// UploadReport handles POST /api/v2/reports/upload
// Accepts a multipart file field "file" containing the report JSON and
// reconciles it against the stored report for the same drone and date.
func (c *Controller) UploadReport(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.HandleError(ctx, err, "Missing upload file", http.StatusBadRequest)
	}
	if fileHeader.Size > maxUploadBytes {
		return c.HandleError(ctx, nil, "Upload file too large", http.StatusBadRequest)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to open upload file", http.StatusBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read upload file", http.StatusBadRequest)
	}

	payload, err := ingest.ParsePayload(data)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid report payload", errorStatus(err))
	}

	result, err := c.Reconciler.Reconcile(payload)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to reconcile report", errorStatus(err))
	}

	c.Debug("Report uploaded: drone=%s date=%s outcome=%s accepted=%d skipped=%d",
		result.DroneID, result.Date, result.Outcome, result.Accepted, len(result.Skipped))

	return ctx.JSON(http.StatusCreated, uploadResponseFromResult(result))
}

// GetReports handles GET /api/v2/reports
// Returns all reports with their derived violation counts.
func (c *Controller) GetReports(ctx echo.Context) error {
	summaries, err := c.DS.ListReportSummaries()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list reports", http.StatusInternalServerError)
	}
	if summaries == nil {
		summaries = []datastore.ReportSummary{}
	}
	return ctx.JSON(http.StatusOK, summaries)
}

// GetReport handles GET /api/v2/reports/:id
func (c *Controller) GetReport(ctx echo.Context) error {
	report, err := c.DS.GetReport(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get report", errorStatus(err))
	}
	return ctx.JSON(http.StatusOK, reportResponseFromReport(&report))
}

// DeleteReport handles DELETE /api/v2/reports/:id
// Removes the report and all of its violations.
func (c *Controller) DeleteReport(ctx echo.Context) error {
	if err := c.DS.DeleteReport(ctx.Param("id")); err != nil {
		return c.HandleError(ctx, err, "Failed to delete report", errorStatus(err))
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ResetReports handles POST /api/v2/reports/reset
// Deletes every report and violation in the store.
func (c *Controller) ResetReports(ctx echo.Context) error {
	if err := c.DS.ResetAll(); err != nil {
		return c.HandleError(ctx, err, "Failed to reset reports", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"message": "all reports deleted"})
}

func uploadResponseFromResult(result *ingest.Result) *UploadResponse {
	violations := make([]ViolationResponse, 0, len(result.Violations))
	for i := range result.Violations {
		violations = append(violations, violationResponseFromRecord(&result.Violations[i]))
	}

	return &UploadResponse{
		ID:           result.ReportID,
		DroneID:      result.DroneID,
		Date:         result.Date,
		Location:     result.Location,
		CreatedAt:    result.CreatedAt.Format(time.RFC3339),
		Outcome:      string(result.Outcome),
		Accepted:     result.Accepted,
		SkippedCount: len(result.Skipped),
		Skipped:      result.Skipped,
		Violations:   violations,
	}
}

func reportResponseFromReport(report *datastore.Report) *ReportResponse {
	violations := make([]ViolationResponse, 0, len(report.Violations))
	for i := range report.Violations {
		violations = append(violations, violationResponseFromRecord(&report.Violations[i]))
	}

	return &ReportResponse{
		ID:         report.ID,
		DroneID:    report.DroneID,
		Date:       report.Date,
		Location:   report.Location,
		CreatedAt:  report.CreatedAt.Format(time.RFC3339),
		Violations: violations,
	}
}

func violationResponseFromRecord(violation *datastore.Violation) ViolationResponse {
	return ViolationResponse{
		ViolationID: violation.ViolationID,
		Type:        violation.Type,
		Timestamp:   violation.Timestamp,
		Latitude:    violation.Latitude,
		Longitude:   violation.Longitude,
		ImageURL:    violation.ImageURL,
		ReportID:    violation.ReportID,
	}
}
