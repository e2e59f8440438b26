// Package ingest implements the report ingestion reconciler: matching an
// uploaded report to the stored report for the same (drone_id, date) pair
// and replacing its violation set.
package ingest

import (
	"log/slog"
	"time"

	"github.com/ankitsingh711/AI-analytics/internal/datastore"
	"github.com/ankitsingh711/AI-analytics/internal/errors"
	"github.com/ankitsingh711/AI-analytics/internal/logging"
)

// Outcome tags how an upload was reconciled against the store.
type Outcome string

const (
	// OutcomeCreated means no report existed for the (drone_id, date)
	// pair and a new one was created.
	OutcomeCreated Outcome = "created"
	// OutcomeReused means an existing report was found and its violation
	// set was replaced. Identity, creation timestamp and location of the
	// existing report are preserved.
	OutcomeReused Outcome = "reused"
	// OutcomeConflictRetried means the create lost a race against a
	// concurrent upload for the same pair; the winning row was re-fetched
	// and reconciled against instead.
	OutcomeConflictRetried Outcome = "conflict-retried"
)

// SkippedEntry records one violation entry that could not be materialized.
type SkippedEntry struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result is the outcome of reconciling one upload.
type Result struct {
	ReportID  uint
	DroneID   string
	Date      string
	Location  string
	CreatedAt time.Time
	Outcome   Outcome
	Accepted  int
	Skipped   []SkippedEntry
	// Violations is the report's full violation set after reconciliation,
	// which is exactly the freshly inserted set.
	Violations []datastore.Violation
}

// Reconciler validates upload payloads and reconciles them against the
// persisted store. It holds no state beyond its dependencies; all report
// state lives in the store.
type Reconciler struct {
	ds     datastore.Interface
	logger *slog.Logger
}

// New creates a Reconciler backed by the given store.
func New(ds datastore.Interface) *Reconciler {
	logger := logging.ForService("ingest")
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		ds:     ds,
		logger: logger,
	}
}

// Reconcile applies a structurally valid payload to the store and returns
// the reconciled report state. A malformed violation entry never aborts the
// upload; it is recorded as skipped and processing continues.
func (r *Reconciler) Reconcile(payload *ReportPayload) (*Result, error) {
	violations, skipped := r.materializeEntries(payload.Violations)

	existing, err := r.ds.GetReportByDroneAndDate(payload.DroneID, payload.Date)
	if err != nil {
		return nil, errors.New(err).
			Component("ingest").
			Category(errors.CategoryDatabase).
			Context("drone_id", payload.DroneID).
			Context("date", payload.Date).
			Build()
	}

	if existing == nil {
		report := &datastore.Report{
			DroneID:  payload.DroneID,
			Date:     payload.Date,
			Location: payload.Location,
		}
		err := r.ds.CreateReportWithViolations(report, violations)
		switch {
		case err == nil:
			return r.buildResult(report, OutcomeCreated, violations, skipped), nil
		case errors.IsConflict(err):
			// A concurrent upload won the create race. Re-fetch the
			// winning row once and reconcile against it.
			existing, err = r.ds.GetReportByDroneAndDate(payload.DroneID, payload.Date)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, errors.Newf("report for drone %s date %s vanished after create conflict",
					payload.DroneID, payload.Date).
					Component("ingest").
					Category(errors.CategoryDatabase).
					Build()
			}
			return r.reuse(existing, OutcomeConflictRetried, violations, skipped)
		default:
			return nil, err
		}
	}

	return r.reuse(existing, OutcomeReused, violations, skipped)
}

// reuse replaces the violation set of an existing report. The report's
// identity, creation timestamp and location are left untouched; the
// incoming location is read only on the create branch.
func (r *Reconciler) reuse(report *datastore.Report, outcome Outcome, violations []datastore.Violation, skipped []SkippedEntry) (*Result, error) {
	if err := r.ds.ReplaceReportViolations(report.ID, violations); err != nil {
		return nil, err
	}
	return r.buildResult(report, outcome, violations, skipped), nil
}

// materializeEntries converts upload entries into store records, collecting
// skipped entries with their reasons.
func (r *Reconciler) materializeEntries(entries []ViolationEntry) ([]datastore.Violation, []SkippedEntry) {
	violations := make([]datastore.Violation, 0, len(entries))
	var skipped []SkippedEntry

	for i := range entries {
		violation, err := entries[i].materialize()
		if err != nil {
			skipped = append(skipped, SkippedEntry{Index: i, Reason: err.Error()})
			continue
		}
		violations = append(violations, violation)
	}

	return violations, skipped
}

func (r *Reconciler) buildResult(report *datastore.Report, outcome Outcome, violations []datastore.Violation, skipped []SkippedEntry) *Result {
	r.logger.Info("report reconciled",
		"report_id", report.ID,
		"drone_id", report.DroneID,
		"date", report.Date,
		"outcome", string(outcome),
		"accepted", len(violations),
		"skipped", len(skipped))

	return &Result{
		ReportID:   report.ID,
		DroneID:    report.DroneID,
		Date:       report.Date,
		Location:   report.Location,
		CreatedAt:  report.CreatedAt,
		Outcome:    outcome,
		Accepted:   len(violations),
		Skipped:    skipped,
		Violations: violations,
	}
}
