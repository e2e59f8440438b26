// model.go this code defines the data model for the application
package datastore

import "time"

// Report represents one submission batch from a drone on a given date.
// The (drone_id, date) pair is the natural key: the composite unique index
// below is what guards it, not application-level check-then-act logic.
type Report struct {
	ID       uint   `gorm:"primaryKey"`
	DroneID  string `gorm:"size:64;uniqueIndex:idx_reports_drone_date;index:idx_reports_drone"`
	Date     string `gorm:"size:32;uniqueIndex:idx_reports_drone_date;index:idx_reports_date"`
	Location string `gorm:"size:128;index:idx_reports_location"`
	// CreatedAt is assigned by GORM on first insert and never updated;
	// a reconciling re-upload reuses the row and leaves it untouched.
	CreatedAt  time.Time
	Violations []Violation `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

// Violation represents one detected incident within a Report.
type Violation struct {
	ID uint `gorm:"primaryKey"`
	// ViolationID is the external identifier supplied by the drone.
	// It is indexed for lookups but intentionally NOT unique: global
	// uniqueness across reports is implied by the upload contract but
	// not enforced here.
	ViolationID string  `gorm:"size:64;index:idx_violations_violation_id"`
	Type        string  `gorm:"size:64;index:idx_violations_type"`
	Timestamp   string  `gorm:"size:64"`
	Latitude    float64
	Longitude   float64
	ImageURL    string
	ReportID    uint `gorm:"index;not null"`
}

// ViolationDetail is a violation denormalized with its owning report's
// drone identifier, date and location, as served to the dashboard.
type ViolationDetail struct {
	ID          uint    `json:"id"`
	ViolationID string  `json:"violation_id"`
	Type        string  `json:"type"`
	Timestamp   string  `json:"timestamp"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageURL    string  `json:"image_url"`
	DroneID     string  `json:"drone_id"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
}

// ReportSummary is a report with its derived violation count, without the
// nested violation records.
type ReportSummary struct {
	ID             uint      `json:"id"`
	DroneID        string    `json:"drone_id"`
	Date           string    `json:"date"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	ViolationCount int64     `json:"violation_count"`
}

// ViolationFilters constrains SearchViolations. Empty fields are
// unconstrained; supplied fields are combined with AND, exact match.
type ViolationFilters struct {
	DroneID string
	Date    string
	Type    string
}
