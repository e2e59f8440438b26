// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/ankitsingh711/AI-analytics/internal/conf"
	"github.com/ankitsingh711/AI-analytics/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// operations the reconciler and the read side depend on.
type Interface interface {
	Open() error
	Close() error
	Ping() error

	// Write side (reconciler)
	GetReportByDroneAndDate(droneID, date string) (*Report, error)
	CreateReportWithViolations(report *Report, violations []Violation) error
	ReplaceReportViolations(reportID uint, violations []Violation) error
	GetReport(id string) (Report, error)
	DeleteReport(id string) error
	ResetAll() error

	// Read side (aggregation)
	CountViolations() (int64, error)
	CountViolationsByType() (map[string]int64, error)
	GetDistinctDrones() ([]string, error)
	GetDistinctLocations() ([]string, error)
	GetDistinctTypes() ([]string, error)
	GetDistinctDates() ([]string, error)
	GetRecentViolations(limit int) ([]ViolationDetail, error)
	SearchViolations(filters ViolationFilters) ([]ViolationDetail, error)
	ListReportSummaries() ([]ReportSummary, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided settings.
// Exactly one backend is enabled; validation in conf guarantees this.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// Ping verifies the underlying database connection is alive.
func (ds *DataStore) Ping() error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("getting database handle: %w", err)
	}
	return sqlDB.Ping()
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("getting database handle: %w", err)
	}
	return sqlDB.Close()
}

// GetReportByDroneAndDate retrieves a report by its natural key. The match
// is exact and case-sensitive; no normalization is applied. A nil report
// with a nil error means no report exists for the pair.
func (ds *DataStore) GetReportByDroneAndDate(droneID, date string) (*Report, error) {
	var report Report
	err := ds.DB.Where("drone_id = ? AND date = ?", droneID, date).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting report for drone %s date %s: %w", droneID, date, err)
	}
	return &report, nil
}

// CreateReportWithViolations stores a new report and its violation set as a
// single transaction. A unique-constraint rejection on (drone_id, date) is
// surfaced as a conflict-categorized error so the caller can re-fetch the
// winning row and reconcile against it.
func (ds *DataStore) CreateReportWithViolations(report *Report, violations []Violation) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		for i := range violations {
			violations[i].ReportID = report.ID
			if err := tx.Create(&violations[i]).Error; err != nil {
				return fmt.Errorf("saving violation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.New(err).
				Component("datastore").
				Category(errors.CategoryConflict).
				Context("drone_id", report.DroneID).
				Context("date", report.Date).
				Build()
		}
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "create_report_with_violations").
			Build()
	}
	return nil
}

// ReplaceReportViolations discards the report's existing violation set and
// inserts the supplied one, all within a single transaction. An empty set is
// valid and clears the report's violations. On any failure the transaction
// rolls back and the previous set remains intact.
func (ds *DataStore) ReplaceReportViolations(reportID uint, violations []Violation) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", reportID).Delete(&Violation{}).Error; err != nil {
			return fmt.Errorf("deleting violations for report ID %d: %w", reportID, err)
		}
		for i := range violations {
			violations[i].ReportID = reportID
			if err := tx.Create(&violations[i]).Error; err != nil {
				return fmt.Errorf("saving violation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "replace_report_violations").
			Context("report_id", reportID).
			Build()
	}
	return nil
}

// GetReport retrieves a report by its surrogate ID with violations preloaded.
func (ds *DataStore) GetReport(id string) (Report, error) {
	reportID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return Report{}, errors.Newf("converting ID to integer: %v", err).
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	var report Report
	if err := ds.DB.Preload("Violations").First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Report{}, errors.Newf("report with ID %d not found", reportID).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return Report{}, fmt.Errorf("getting report with ID %d: %w", reportID, err)
	}
	return report, nil
}

// DeleteReport removes a report and its violations from the database.
func (ds *DataStore) DeleteReport(id string) error {
	reportID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return errors.Newf("converting ID to integer: %v", err).
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var report Report
		if err := tx.First(&report, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Newf("report with ID %d not found", reportID).
					Component("datastore").
					Category(errors.CategoryNotFound).
					Build()
			}
			return fmt.Errorf("getting report with ID %d: %w", reportID, err)
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&Violation{}).Error; err != nil {
			return fmt.Errorf("deleting violations for report ID %d: %w", reportID, err)
		}
		if err := tx.Delete(&Report{}, reportID).Error; err != nil {
			return fmt.Errorf("deleting report with ID %d: %w", reportID, err)
		}
		return nil
	})
}

// ResetAll removes every report and violation from the store.
func (ds *DataStore) ResetAll() error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Violation{}).Error; err != nil {
			return fmt.Errorf("deleting all violations: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&Report{}).Error; err != nil {
			return fmt.Errorf("deleting all reports: %w", err)
		}
		return nil
	})
}
