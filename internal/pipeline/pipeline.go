package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pricingdesk/internal/models"
	"pricingdesk/internal/warehouse"
)

// Runner drives the fixed parse -> verify -> probe -> invoke -> extract
// sequence against already-uploaded brochures. Every step is gated on the
// previous one; a failing step yields a distinct human-readable status and
// aborts the rest. Tables are created with CREATE OR REPLACE, so a rerun
// after a partial failure is safe.
type Runner struct {
	exec  warehouse.Executor
	stmts *warehouse.Statements
	log   *zap.SugaredLogger
}

// Result is what a pipeline run hands back to the UI.
type Result struct {
	Status   string                `json:"status"`
	Parsed   int                   `json:"parsed"`
	Features *models.FeatureRecord `json:"features,omitempty"`
}

// Succeeded reports whether the run reached the extraction preview.
func (r Result) Succeeded() bool {
	return strings.HasPrefix(r.Status, "✅")
}

// NewRunner wires the orchestrator to its warehouse collaborators.
func NewRunner(exec warehouse.Executor, stmts *warehouse.Statements, log *zap.SugaredLogger) *Runner {
	return &Runner{exec: exec, stmts: stmts, log: log}
}

// Run executes the extraction workflow for the session's uploaded files.
// The returned Result always carries a status line; Run never panics the
// trigger handler with an error.
func (r *Runner) Run(ctx context.Context, files []models.UploadedFile) Result {
	if len(files) == 0 {
		return Result{Status: "⚠️ Please upload at least one file before processing."}
	}
	if invalid := nonPDFNames(files); len(invalid) > 0 {
		return Result{Status: fmt.Sprintf(
			"❌ Invalid file types detected: %s. Please upload only PDF files.",
			strings.Join(invalid, ", "))}
	}

	// Step 1: parse documents into text.
	if _, err := r.exec.Execute(ctx, r.stmts.ParseDocuments()); err != nil {
		r.log.Errorw("parse step failed", "error", err)
		return Result{Status: "❌ Parse query failed: " + err.Error()}
	}

	// Step 2: verify the parse produced rows.
	count, err := r.countParsed(ctx)
	if err != nil {
		r.log.Errorw("parse verification failed", "error", err)
		return Result{Status: "❌ Could not verify parsed documents: " + err.Error()}
	}
	if count == 0 {
		return Result{Status: "⚠️ Parse completed but no data found in table."}
	}

	// Step 3: smoke-test the AI endpoint. A missing endpoint is actionable
	// and fatal; any other probe failure is reported and the run continues
	// best-effort.
	if _, err := r.exec.Execute(ctx, r.stmts.ProbeEndpoint()); err != nil {
		if isEndpointMissing(err) {
			return Result{
				Parsed: count,
				Status: fmt.Sprintf(
					"❌ AI endpoint %q does not exist in the workspace. Update warehouse.ai_endpoint in app.yaml.",
					r.stmts.Endpoint()),
			}
		}
		r.log.Warnw("endpoint probe failed, continuing", "endpoint", r.stmts.Endpoint(), "error", err)
	}

	// Step 4: batch-invoke the endpoint per document.
	if _, err := r.exec.Execute(ctx, r.stmts.BatchInvoke()); err != nil {
		r.log.Errorw("batch invoke failed", "error", err)
		return Result{Parsed: count, Status: "❌ Failed to create AI responses table: " + err.Error()}
	}

	// Step 5: structured field extraction, errored rows excluded.
	if _, err := r.exec.Execute(ctx, r.stmts.ExtractFeatures()); err != nil {
		r.log.Errorw("feature extraction failed", "error", err)
		return Result{Parsed: count, Status: "❌ Failed to create features table: " + err.Error()}
	}

	// Step 6: surface the most recent feature row.
	record, err := r.LatestFeatures(ctx)
	if err != nil {
		r.log.Warnw("feature preview unavailable", "error", err)
		return Result{Parsed: count, Status: fmt.Sprintf(
			"✅ Success! Parsed %d document(s) and created the pricing features table.", count)}
	}
	return Result{
		Parsed:   count,
		Features: record,
		Status:   fmt.Sprintf("✅ Success! Parsed %d document(s). Check the extracted features below.", count),
	}
}

// LatestFeatures reads the newest feature row, independent of a full run,
// so the preview panel can refresh on demand.
func (r *Runner) LatestFeatures(ctx context.Context) (*models.FeatureRecord, error) {
	table, err := r.exec.Execute(ctx, r.stmts.LatestFeatures())
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	if table.Empty() {
		return nil, fmt.Errorf("no feature rows available")
	}
	return recordFromRow(table, 0), nil
}

func (r *Runner) countParsed(ctx context.Context) (int, error) {
	table, err := r.exec.Execute(ctx, r.stmts.CountParsed())
	if err != nil {
		return 0, err
	}
	if table.Empty() {
		return 0, nil
	}
	n, err := strconv.Atoi(table.Value(0, "count"))
	if err != nil {
		return 0, fmt.Errorf("parse row count %q: %w", table.Value(0, "count"), err)
	}
	return n, nil
}

func nonPDFNames(files []models.UploadedFile) []string {
	var invalid []string
	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Filename), ".pdf") {
			invalid = append(invalid, f.Filename)
		}
	}
	return invalid
}

func isEndpointMissing(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_DOES_NOT_EXIST") || strings.Contains(msg, "does not exist")
}

func recordFromRow(t *warehouse.Table, row int) *models.FeatureRecord {
	return &models.FeatureRecord{
		Input:                         t.Value(row, "input"),
		IssuingCompany:                parseList(t.Value(row, "issuing_company")),
		MinimumPremium:                t.Value(row, "minimum_premium"),
		WithdrawalOptions:             parseList(t.Value(row, "withdrawal_options")),
		InterestCrediting:             t.Value(row, "interest_crediting"),
		SurrenderChargeSchedule:       t.Value(row, "surrender_charge_schedule"),
		DeathBenefit:                  t.Value(row, "death_benefit"),
		AvailableRiders:               parseList(t.Value(row, "available_riders")),
		IssueAges:                     t.Value(row, "issue_ages"),
		GuaranteePeriod:               t.Value(row, "guarantee_period"),
		GuaranteedMinimumInterestRate: t.Value(row, "guaranteed_minimum_interest_rate"),
	}
}

// parseList decodes an array column. The warehouse serializes arrays as
// JSON; a non-JSON value is kept as a single element rather than dropped.
func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		return items
	}
	return []string{raw}
}
