package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pricingdesk/internal/logging"
	"pricingdesk/internal/models"
	"pricingdesk/internal/warehouse"
)

// fakeExec scripts per-statement responses keyed by a substring of the
// SQL text and records every statement it saw.
type fakeExec struct {
	seen    []string
	results map[string]*warehouse.Table
	errs    map[string]error
}

func (f *fakeExec) Execute(ctx context.Context, stmt warehouse.Statement) (*warehouse.Table, error) {
	f.seen = append(f.seen, stmt.SQL)
	for key, err := range f.errs {
		if strings.Contains(stmt.SQL, key) {
			return nil, err
		}
	}
	for key, table := range f.results {
		if strings.Contains(stmt.SQL, key) {
			return table, nil
		}
	}
	return nil, nil
}

func (f *fakeExec) ExecuteMany(ctx context.Context, stmts []warehouse.Statement) ([]*warehouse.Table, error) {
	var tables []*warehouse.Table
	for _, stmt := range stmts {
		t, err := f.Execute(ctx, stmt)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func countTable(n string) *warehouse.Table {
	return &warehouse.Table{Columns: []string{"count"}, Rows: [][]string{{n}}}
}

func testRunner(exec warehouse.Executor) *Runner {
	stmts := warehouse.NewStatements("insurance.fa_pricing", "/Volumes/v", "hosted-model")
	return NewRunner(exec, stmts, logging.Nop())
}

func pdfFiles(names ...string) []models.UploadedFile {
	var files []models.UploadedFile
	for _, n := range names {
		files = append(files, models.UploadedFile{Filename: n, Status: models.FileUploaded})
	}
	return files
}

func TestRunNoFiles(t *testing.T) {
	exec := &fakeExec{}
	res := testRunner(exec).Run(context.Background(), nil)
	if !strings.Contains(res.Status, "upload at least one file") {
		t.Errorf("status = %q", res.Status)
	}
	if len(exec.seen) != 0 {
		t.Errorf("no SQL should run without files, ran %d statements", len(exec.seen))
	}
}

func TestRunRejectsNonPDF(t *testing.T) {
	exec := &fakeExec{}
	res := testRunner(exec).Run(context.Background(), pdfFiles("brochure.pdf", "notes.docx"))
	if !strings.Contains(res.Status, "Invalid file types") || !strings.Contains(res.Status, "notes.docx") {
		t.Errorf("status = %q", res.Status)
	}
	if len(exec.seen) != 0 {
		t.Errorf("no SQL should run with invalid types, ran %d statements", len(exec.seen))
	}
}

func TestRunStopsWhenParseProducesNoRows(t *testing.T) {
	exec := &fakeExec{results: map[string]*warehouse.Table{
		"COUNT(*)": countTable("0"),
	}}
	res := testRunner(exec).Run(context.Background(), pdfFiles("brochure.pdf"))
	if !strings.Contains(res.Status, "no data found") {
		t.Errorf("status = %q", res.Status)
	}
	if len(exec.seen) != 2 {
		t.Fatalf("ran %d statements, want exactly parse + count", len(exec.seen))
	}
	for _, sql := range exec.seen {
		if strings.Contains(sql, "ai_query") {
			t.Errorf("endpoint touched despite empty parse table:\n%s", sql)
		}
	}
}

func TestRunReportsMissingEndpoint(t *testing.T) {
	exec := &fakeExec{
		results: map[string]*warehouse.Table{"COUNT(*)": countTable("2")},
		errs:    map[string]error{"test_response": errors.New("RESOURCE_DOES_NOT_EXIST: endpoint not found")},
	}
	res := testRunner(exec).Run(context.Background(), pdfFiles("brochure.pdf"))
	if !strings.Contains(res.Status, `"hosted-model" does not exist`) {
		t.Errorf("status = %q", res.Status)
	}
	if res.Succeeded() {
		t.Error("missing endpoint must not report success")
	}
	for _, sql := range exec.seen {
		if strings.Contains(sql, "endpoint_response") {
			t.Error("batch invoke ran despite missing endpoint")
		}
	}
}

func TestRunContinuesOnTransientProbeFailure(t *testing.T) {
	exec := &fakeExec{
		results: map[string]*warehouse.Table{"COUNT(*)": countTable("1")},
		errs:    map[string]error{"test_response": errors.New("deadline exceeded")},
	}
	res := testRunner(exec).Run(context.Background(), pdfFiles("brochure.pdf"))
	if !res.Succeeded() {
		t.Errorf("transient probe failure should not abort the run, status = %q", res.Status)
	}
}

func TestRunSuccessWithFeaturePreview(t *testing.T) {
	features := &warehouse.Table{
		Columns: []string{"input", "issuing_company", "minimum_premium", "guarantee_period"},
		Rows:    [][]string{{"doc text", `["Acme Life"]`, "$10,000", "10 years"}},
	}
	exec := &fakeExec{results: map[string]*warehouse.Table{
		"COUNT(*)":       countTable("3"),
		"ORDER BY input": features,
		"test_response":  {Columns: []string{"test_response"}, Rows: [][]string{{"ok"}}},
	}}
	res := testRunner(exec).Run(context.Background(), pdfFiles("a.pdf", "b.pdf", "c.pdf"))
	if !res.Succeeded() {
		t.Fatalf("status = %q", res.Status)
	}
	if res.Parsed != 3 {
		t.Errorf("parsed = %d, want 3", res.Parsed)
	}
	if res.Features == nil {
		t.Fatal("feature preview missing")
	}
	if got := res.Features.IssuingCompany; len(got) != 1 || got[0] != "Acme Life" {
		t.Errorf("issuing company = %v", got)
	}
	if res.Features.MinimumPremium != "$10,000" {
		t.Errorf("minimum premium = %q", res.Features.MinimumPremium)
	}
}

func TestParseList(t *testing.T) {
	if got := parseList(`["a","b"]`); len(got) != 2 || got[0] != "a" {
		t.Errorf("json array = %v", got)
	}
	if got := parseList("Acme Life"); len(got) != 1 || got[0] != "Acme Life" {
		t.Errorf("bare value = %v", got)
	}
	if got := parseList(""); got != nil {
		t.Errorf("empty = %v, want nil", got)
	}
	if got := parseList("null"); got != nil {
		t.Errorf("null = %v, want nil", got)
	}
}

func TestLatestFeaturesNoRows(t *testing.T) {
	exec := &fakeExec{}
	if _, err := testRunner(exec).LatestFeatures(context.Background()); err == nil {
		t.Fatal("expected error when no feature rows exist")
	}
}
