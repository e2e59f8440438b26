// internal/api/v2/analytics.go
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ankitsingh711/AI-analytics/internal/datastore"
)

// recentViolationsLimit is the number of most-recent violations included in
// the dashboard stats response.
const recentViolationsLimit = 10

// DashboardStats is the aggregate view served to the dashboard.
type DashboardStats struct {
	TotalViolations  int64                       `json:"total_violations"`
	ViolationsByType map[string]int64            `json:"violations_by_type"`
	Drones           []string                    `json:"drones"`
	Locations        []string                    `json:"locations"`
	RecentViolations []datastore.ViolationDetail `json:"recent_violations"`
}

// initAnalyticsRoutes registers all analytics-related API endpoints
func (c *Controller) initAnalyticsRoutes() {
	dashboardGroup := c.Group.Group("/dashboard")
	dashboardGroup.GET("/stats", c.GetDashboardStats)

	violationsGroup := c.Group.Group("/violations")
	violationsGroup.GET("", c.GetViolations)
	violationsGroup.GET("/types", c.GetViolationTypes)

	c.Group.GET("/drones", c.GetDrones)
	c.Group.GET("/dates", c.GetDates)
}

// GetDashboardStats handles GET /api/v2/dashboard/stats
// Computes total and per-type violation counts, the distinct drone and
// location sets, and the most recently inserted violations.
func (c *Controller) GetDashboardStats(ctx echo.Context) error {
	total, err := c.DS.CountViolations()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count violations", http.StatusInternalServerError)
	}

	byType, err := c.DS.CountViolationsByType()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count violations by type", http.StatusInternalServerError)
	}

	drones, err := c.DS.GetDistinctDrones()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get distinct drones", http.StatusInternalServerError)
	}

	locations, err := c.DS.GetDistinctLocations()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get distinct locations", http.StatusInternalServerError)
	}

	limit := recentViolationsLimit
	if limitStr := ctx.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	recent, err := c.DS.GetRecentViolations(limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get recent violations", http.StatusInternalServerError)
	}

	stats := DashboardStats{
		TotalViolations:  total,
		ViolationsByType: byType,
		Drones:           emptyIfNil(drones),
		Locations:        emptyIfNil(locations),
		RecentViolations: recent,
	}
	if stats.ViolationsByType == nil {
		stats.ViolationsByType = map[string]int64{}
	}
	if stats.RecentViolations == nil {
		stats.RecentViolations = []datastore.ViolationDetail{}
	}

	return ctx.JSON(http.StatusOK, stats)
}

// GetViolations handles GET /api/v2/violations
// Optional query parameters drone_id, date and type are combined with AND,
// exact match; omitted parameters are unconstrained.
func (c *Controller) GetViolations(ctx echo.Context) error {
	filters := datastore.ViolationFilters{
		DroneID: ctx.QueryParam("drone_id"),
		Date:    ctx.QueryParam("date"),
		Type:    ctx.QueryParam("type"),
	}

	details, err := c.DS.SearchViolations(filters)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to search violations", http.StatusInternalServerError)
	}
	if details == nil {
		details = []datastore.ViolationDetail{}
	}

	return ctx.JSON(http.StatusOK, details)
}

// GetViolationTypes handles GET /api/v2/violations/types
func (c *Controller) GetViolationTypes(ctx echo.Context) error {
	types, err := c.DS.GetDistinctTypes()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get violation types", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(types))
}

// GetDrones handles GET /api/v2/drones
func (c *Controller) GetDrones(ctx echo.Context) error {
	drones, err := c.DS.GetDistinctDrones()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get drones", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(drones))
}

// GetDates handles GET /api/v2/dates
func (c *Controller) GetDates(ctx echo.Context) error {
	dates, err := c.DS.GetDistinctDates()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get dates", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(dates))
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
