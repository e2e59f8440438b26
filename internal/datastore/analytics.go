// internal/datastore/analytics.go
package datastore

import (
	"fmt"
)

// typeCount is the scan target for the by-type grouping query.
type typeCount struct {
	Type  string
	Count int64
}

// CountViolations returns the cardinality of all violations in the store.
func (ds *DataStore) CountViolations() (int64, error) {
	var count int64
	if err := ds.DB.Model(&Violation{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("error counting violations: %w", err)
	}
	return count, nil
}

// CountViolationsByType returns violation counts grouped by category label.
func (ds *DataStore) CountViolationsByType() (map[string]int64, error) {
	var rows []typeCount
	err := ds.DB.Table("violations").
		Select("type, COUNT(*) as count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error counting violations by type: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

// GetDistinctDrones returns the deduplicated drone identifiers across all reports.
func (ds *DataStore) GetDistinctDrones() ([]string, error) {
	var drones []string
	err := ds.DB.Model(&Report{}).Distinct().Pluck("drone_id", &drones).Error
	if err != nil {
		return nil, fmt.Errorf("error getting distinct drones: %w", err)
	}
	return drones, nil
}

// GetDistinctLocations returns the deduplicated location labels across all reports.
func (ds *DataStore) GetDistinctLocations() ([]string, error) {
	var locations []string
	err := ds.DB.Model(&Report{}).Distinct().Pluck("location", &locations).Error
	if err != nil {
		return nil, fmt.Errorf("error getting distinct locations: %w", err)
	}
	return locations, nil
}

// GetDistinctTypes returns the deduplicated violation category labels.
func (ds *DataStore) GetDistinctTypes() ([]string, error) {
	var types []string
	err := ds.DB.Model(&Violation{}).Distinct().Pluck("type", &types).Error
	if err != nil {
		return nil, fmt.Errorf("error getting distinct violation types: %w", err)
	}
	return types, nil
}

// GetDistinctDates returns the deduplicated report dates.
func (ds *DataStore) GetDistinctDates() ([]string, error) {
	var dates []string
	err := ds.DB.Model(&Report{}).Distinct().Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("error getting distinct dates: %w", err)
	}
	return dates, nil
}

// violationDetailColumns selects the denormalized violation fields shared by
// the recent and filtered queries.
const violationDetailColumns = "violations.id, violations.violation_id, violations.type, " +
	"violations.timestamp, violations.latitude, violations.longitude, violations.image_url, " +
	"reports.drone_id, reports.date, reports.location"

// GetRecentViolations returns the most recently inserted violations,
// denormalized with their owning report. Ordering is by insertion order
// (violation primary key descending), not by event timestamp.
func (ds *DataStore) GetRecentViolations(limit int) ([]ViolationDetail, error) {
	if limit <= 0 {
		limit = 10
	}

	var details []ViolationDetail
	err := ds.DB.Table("violations").
		Select(violationDetailColumns).
		Joins("INNER JOIN reports ON reports.id = violations.report_id").
		Order("violations.id DESC").
		Limit(limit).
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("error getting recent violations: %w", err)
	}
	return details, nil
}

// SearchViolations returns all violations whose owning report matches every
// supplied filter, exact match, logical AND. Omitted filters are
// unconstrained.
func (ds *DataStore) SearchViolations(filters ViolationFilters) ([]ViolationDetail, error) {
	query := ds.DB.Table("violations").
		Select(violationDetailColumns).
		Joins("INNER JOIN reports ON reports.id = violations.report_id")

	if filters.DroneID != "" {
		query = query.Where("reports.drone_id = ?", filters.DroneID)
	}
	if filters.Date != "" {
		query = query.Where("reports.date = ?", filters.Date)
	}
	if filters.Type != "" {
		query = query.Where("violations.type = ?", filters.Type)
	}

	var details []ViolationDetail
	if err := query.Order("violations.id").Scan(&details).Error; err != nil {
		return nil, fmt.Errorf("error searching violations: %w", err)
	}
	return details, nil
}

// ListReportSummaries returns all reports with their derived violation
// counts, without the nested violation records.
func (ds *DataStore) ListReportSummaries() ([]ReportSummary, error) {
	var summaries []ReportSummary
	err := ds.DB.Table("reports").
		Select("reports.id, reports.drone_id, reports.date, reports.location, reports.created_at, " +
			"COUNT(violations.id) as violation_count").
		Joins("LEFT JOIN violations ON violations.report_id = reports.id").
		Group("reports.id, reports.drone_id, reports.date, reports.location, reports.created_at").
		Order("reports.id").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("error listing report summaries: %w", err)
	}
	return summaries, nil
}
