package report

import (
	"encoding/json"
	"os"
	"time"

	"actions-auditor/inventory"
	"actions-auditor/types"
)

// SchemaVersion identifies the canonical report layout. Consumers pin on
// this value; bump it only with a migration path.
const SchemaVersion = "1.0"

// JSONReporter writes the canonical machine-readable report. The envelope
// layout is stable: existing consumers parse it field by field.
type JSONReporter struct {
	OutputDir string
}

type jsonEnvelope struct {
	SchemaVersion string      `json:"schema_version"`
	Tool          string      `json:"tool"`
	ReportType    string      `json:"report_type"`
	GeneratedAt   time.Time   `json:"generated_at"`
	Summary       jsonSummary `json:"summary"`
}

type jsonSummary struct {
	TotalRepos       int                `json:"total_repos"`
	SuccessfulScans  int                `json:"successful_scans"`
	FailedScans      int                `json:"failed_scans"`
	AverageScore     float64            `json:"average_score"`
	CriticalCount    int                `json:"critical_count"`
	HighCount        int                `json:"high_count"`
	MediumCount      int                `json:"medium_count"`
	LowCount         int                `json:"low_count"`
	ScanDuration     float64            `json:"scan_duration"`
	ExecutiveSummary jsonExecSummary    `json:"executive_summary"`
	Results          []types.ScanResult `json:"results"`
}

type jsonExecSummary struct {
	RiskDistribution types.RiskDistribution `json:"risk_distribution"`
	TopIssues        []types.TopIssue       `json:"top_issues"`
}

// Generate writes the canonical JSON report.
func (r *JSONReporter) Generate(summary types.ScanSummary, filename string) (string, error) {
	if err := ensureDir(r.OutputDir); err != nil {
		return "", err
	}

	env := jsonEnvelope{
		SchemaVersion: SchemaVersion,
		Tool:          "actions-auditor",
		ReportType:    "security_scan",
		GeneratedAt:   time.Now().UTC(),
		Summary: jsonSummary{
			TotalRepos:      summary.TotalRepos,
			SuccessfulScans: summary.SuccessfulScans,
			FailedScans:     summary.FailedScans,
			AverageScore:    summary.AverageScore,
			CriticalCount:   summary.CriticalCount,
			HighCount:       summary.HighCount,
			MediumCount:     summary.MediumCount,
			LowCount:        summary.LowCount,
			ScanDuration:    summary.ScanDuration,
			ExecutiveSummary: jsonExecSummary{
				RiskDistribution: summary.Distribution(),
				TopIssues:        summary.TopIssues(),
			},
			Results: summary.Results,
		},
	}

	path := outputPath(r.OutputDir, filename, ".json")
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteInventoryJSON exports the full inventory envelope as JSON.
func WriteInventoryJSON(path string, export inventory.Export) error {
	raw, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
