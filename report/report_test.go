package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"actions-auditor/types"
)

func sampleSummary() types.ScanSummary {
	good, bad := 7.5, 3.2
	results := []types.ScanResult{
		{
			RepoName:  "owner/good",
			RepoURL:   "https://github.com/owner/good",
			Score:     &good,
			RiskLevel: types.RiskMedium,
			ScanDate:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			RepoName:  "owner/bad",
			RepoURL:   "https://github.com/owner/bad",
			Score:     &bad,
			RiskLevel: types.RiskCritical,
			ScanDate:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Workflows: []types.WorkflowAnalysis{{
				Path: ".github/workflows/ci.yml",
				Findings: []types.Finding{
					{CheckName: "Dangerous-Workflow", Severity: types.SeverityHigh},
					{CheckName: "Dangerous-Workflow", Severity: types.SeverityHigh},
				},
			}},
		},
		types.NewErrorResult("owner/broken", "https://github.com/owner/broken",
			time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), errors.New("timed out")),
	}
	return types.SummarizeResults(results, 42*time.Second)
}

func TestByFormat(t *testing.T) {
	for _, format := range []string{"json", "csv", "markdown", "md"} {
		if _, ok := ByFormat(format, t.TempDir()); !ok {
			t.Errorf("ByFormat(%q) unknown", format)
		}
	}
	if _, ok := ByFormat("xml", t.TempDir()); ok {
		t.Error("ByFormat(xml) should be unknown")
	}
}

func TestJSONReporterEnvelope(t *testing.T) {
	dir := t.TempDir()
	r := &JSONReporter{OutputDir: dir}

	path, err := r.Generate(sampleSummary(), "report")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "report.json" {
		t.Errorf("path = %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var env map[string]any
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if env["schema_version"] != SchemaVersion {
		t.Errorf("schema_version = %v", env["schema_version"])
	}
	if env["tool"] != "actions-auditor" || env["report_type"] != "security_scan" {
		t.Errorf("tool/report_type = %v/%v", env["tool"], env["report_type"])
	}

	summary := env["summary"].(map[string]any)
	if summary["total_repos"] != 3.0 || summary["successful_scans"] != 2.0 || summary["failed_scans"] != 1.0 {
		t.Errorf("summary counts wrong: %v", summary)
	}
	if summary["average_score"] != 5.35 {
		t.Errorf("average_score = %v, want 5.35", summary["average_score"])
	}

	exec := summary["executive_summary"].(map[string]any)
	issues := exec["top_issues"].([]any)
	if len(issues) != 1 {
		t.Fatalf("top_issues = %v", issues)
	}
	issue := issues[0].(map[string]any)
	if issue["name"] != "Dangerous-Workflow" || issue["instances"] != 2.0 {
		t.Errorf("top issue = %v", issue)
	}

	if results := summary["results"].([]any); len(results) != 3 {
		t.Errorf("results count = %d, want 3", len(results))
	}
}

func TestCSVReporterRows(t *testing.T) {
	dir := t.TempDir()
	r := &CSVReporter{OutputDir: dir}

	path, err := r.Generate(sampleSummary(), "report")
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	if rows[0][0] != "Repository" || rows[0][3] != "Risk Level" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "owner/good" || rows[1][2] != "7.5" || rows[1][3] != "MEDIUM" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][5] != "2" {
		t.Errorf("findings count = %q, want 2", rows[2][5])
	}
	// Failed scans keep an empty score and carry the error message.
	if rows[3][2] != "" || rows[3][6] != "timed out" {
		t.Errorf("failed row = %v", rows[3])
	}
}

func TestMarkdownReporterSections(t *testing.T) {
	dir := t.TempDir()
	r := &MarkdownReporter{OutputDir: dir}

	path, err := r.Generate(sampleSummary(), "report")
	if err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(raw)

	for _, want := range []string{
		"# Security Scan Report",
		"## Risk Distribution",
		"## Top Issues",
		"## Workflow Findings",
		"## Repositories",
		"| owner/bad | .github/workflows/ci.yml | 0 | 2 | 0 | 0 | 0 |",
		"| Total repositories | 3 |",
		"| Average score | 5.35/10 |",
		"[owner/good](https://github.com/owner/good)",
		"| Dangerous-Workflow | 2 | 1 |",
		"FAILED: timed out",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestMarkdownReporterOmitsEmptyTopIssues(t *testing.T) {
	score := 9.0
	summary := types.SummarizeResults([]types.ScanResult{{
		RepoName:  "owner/clean",
		Score:     &score,
		RiskLevel: types.RiskLow,
		ScanDate:  time.Now(),
	}}, time.Second)

	r := &MarkdownReporter{OutputDir: t.TempDir()}
	path, err := r.Generate(summary, "report")
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "## Top Issues") {
		t.Error("empty scan should omit the Top Issues section")
	}
	if strings.Contains(string(raw), "## Workflow Findings") {
		t.Error("scan without findings should omit the Workflow Findings section")
	}
}
