package report

import (
	"os"
	"text/template"

	"actions-auditor/types"
)

// MarkdownReporter writes a human-readable summary report.
type MarkdownReporter struct {
	OutputDir string
}

const markdownTemplate = `# Security Scan Report

## Summary

| Metric | Value |
|---|---|
| Total repositories | {{.Summary.TotalRepos}} |
| Successful scans | {{.Summary.SuccessfulScans}} |
| Failed scans | {{.Summary.FailedScans}} |
| Average score | {{printf "%.2f" .Summary.AverageScore}}/10 |
| Scan duration | {{printf "%.1f" .Summary.ScanDuration}}s |

## Risk Distribution

| Risk | Repositories |
|---|---|
| CRITICAL | {{.Distribution.Critical}} |
| HIGH | {{.Distribution.High}} |
| MEDIUM | {{.Distribution.Medium}} |
| LOW | {{.Distribution.Low}} |
{{if .TopIssues}}
## Top Issues

| Check | Instances | Repos Affected | Severity |
|---|---|---|---|
{{range .TopIssues}}| {{.Name}} | {{.Instances}} | {{.ReposAffected}} | {{.Severity}} |
{{end}}{{end}}{{if .WorkflowRows}}
## Workflow Findings

| Repository | Workflow | CRITICAL | HIGH | MEDIUM | LOW | INFO |
|---|---|---|---|---|---|---|
{{range .WorkflowRows}}| {{.Repo}} | {{.Path}} | {{.Critical}} | {{.High}} | {{.Medium}} | {{.Low}} | {{.Info}} |
{{end}}{{end}}
## Repositories

| Repository | Score | Risk | Status |
|---|---|---|---|
{{range .Summary.Results}}| [{{.RepoName}}]({{.RepoURL}}) | {{if .Score}}{{printf "%.1f" (deref .Score)}}{{else}}-{{end}} | {{.RiskLevel}} | {{if .Error}}FAILED: {{.Error}}{{else}}ok{{end}} |
{{end}}`

type markdownData struct {
	Summary      types.ScanSummary
	Distribution types.RiskDistribution
	TopIssues    []types.TopIssue
	WorkflowRows []workflowRow
}

// workflowRow is one workflow's per-severity finding counts.
type workflowRow struct {
	Repo     string
	Path     string
	Critical int
	High     int
	Medium   int
	Low      int
	Info     int
}

func workflowRows(results []types.ScanResult) []workflowRow {
	var rows []workflowRow
	for _, r := range results {
		for _, w := range r.Workflows {
			counts := w.CountBySeverity()
			rows = append(rows, workflowRow{
				Repo:     r.RepoName,
				Path:     w.Path,
				Critical: counts[types.SeverityCritical],
				High:     counts[types.SeverityHigh],
				Medium:   counts[types.SeverityMedium],
				Low:      counts[types.SeverityLow],
				Info:     counts[types.SeverityInfo],
			})
		}
	}
	return rows
}

// Generate writes the Markdown report.
func (r *MarkdownReporter) Generate(summary types.ScanSummary, filename string) (string, error) {
	if err := ensureDir(r.OutputDir); err != nil {
		return "", err
	}

	tmpl, err := template.New("markdown").Funcs(template.FuncMap{
		"deref": func(f *float64) float64 { return *f },
	}).Parse(markdownTemplate)
	if err != nil {
		return "", err
	}

	path := outputPath(r.OutputDir, filename, ".md")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data := markdownData{
		Summary:      summary,
		Distribution: summary.Distribution(),
		TopIssues:    summary.TopIssues(),
		WorkflowRows: workflowRows(summary.Results),
	}
	if err := tmpl.Execute(f, data); err != nil {
		return "", err
	}
	return path, nil
}
