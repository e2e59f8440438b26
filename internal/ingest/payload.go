// payload.go: upload payload decoding and structural validation
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/ankitsingh711/AI-analytics/internal/datastore"
	"github.com/ankitsingh711/AI-analytics/internal/errors"
)

// ReportPayload is a structurally valid upload: all four top-level fields
// were present. Individual violation entries may still be malformed; those
// are handled per entry during materialization, never by aborting the upload.
type ReportPayload struct {
	DroneID    string
	Date       string
	Location   string
	Violations []ViolationEntry
}

// ViolationEntry is one violation from the upload. Fields are pointers so
// that a missing key is distinguishable from a zero value.
type ViolationEntry struct {
	ID        *string  `json:"id"`
	Type      *string  `json:"type"`
	Timestamp *string  `json:"timestamp"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	ImageURL  *string  `json:"image_url"`
}

// rawPayload mirrors the wire format with pointer fields for presence checks.
type rawPayload struct {
	DroneID    *string           `json:"drone_id"`
	Date       *string           `json:"date"`
	Location   *string           `json:"location"`
	Violations *[]ViolationEntry `json:"violations"`
}

// ParsePayload decodes an upload body and verifies that all four top-level
// fields are present. It fails before any persistence action; a payload
// rejected here has caused no store mutation.
func ParsePayload(data []byte) (*ReportPayload, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Newf("invalid JSON payload: %v", err).
			Component("ingest").
			Category(errors.CategoryValidation).
			Build()
	}

	// Field order matches the upload contract; the first missing field is
	// the one reported.
	checks := []struct {
		name    string
		present bool
	}{
		{"drone_id", raw.DroneID != nil},
		{"date", raw.Date != nil},
		{"location", raw.Location != nil},
		{"violations", raw.Violations != nil},
	}
	for _, check := range checks {
		if !check.present {
			return nil, errors.Newf("missing required field: %s", check.name).
				Component("ingest").
				Category(errors.CategoryValidation).
				Context("field", check.name).
				Build()
		}
	}

	return &ReportPayload{
		DroneID:    *raw.DroneID,
		Date:       *raw.Date,
		Location:   *raw.Location,
		Violations: *raw.Violations,
	}, nil
}

// materialize converts a violation entry into a store record. A missing
// sub-field returns an error naming it; the caller records the entry as
// skipped and continues.
func (e *ViolationEntry) materialize() (datastore.Violation, error) {
	checks := []struct {
		name    string
		present bool
	}{
		{"id", e.ID != nil},
		{"type", e.Type != nil},
		{"timestamp", e.Timestamp != nil},
		{"latitude", e.Latitude != nil},
		{"longitude", e.Longitude != nil},
		{"image_url", e.ImageURL != nil},
	}
	for _, check := range checks {
		if !check.present {
			return datastore.Violation{}, fmt.Errorf("missing field: %s", check.name)
		}
	}

	return datastore.Violation{
		ViolationID: *e.ID,
		Type:        *e.Type,
		Timestamp:   *e.Timestamp,
		Latitude:    *e.Latitude,
		Longitude:   *e.Longitude,
		ImageURL:    *e.ImageURL,
	}, nil
}
