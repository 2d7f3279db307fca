package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"actions-auditor/inventory"
	"actions-auditor/types"
)

// CSVReporter writes one row per repository, suitable for spreadsheets.
type CSVReporter struct {
	OutputDir string
}

// Generate writes the per-repository CSV report.
func (r *CSVReporter) Generate(summary types.ScanSummary, filename string) (string, error) {
	if err := ensureDir(r.OutputDir); err != nil {
		return "", err
	}

	path := outputPath(r.OutputDir, filename, ".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Repository", "URL", "Score", "Risk Level", "Scan Date", "Findings", "Error"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, res := range summary.Results {
		score := ""
		if res.Score != nil {
			score = fmt.Sprintf("%.1f", *res.Score)
		}
		findings := 0
		for _, wf := range res.Workflows {
			findings += len(wf.Findings)
		}
		row := []string{
			res.RepoName,
			res.RepoURL,
			score,
			string(res.RiskLevel),
			res.ScanDate.Format("2006-01-02"),
			fmt.Sprintf("%d", findings),
			res.Error,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return path, w.Error()
}

// WriteInventoryCSV exports the inventory as one row per repository.
func WriteInventoryCSV(path string, export inventory.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Repository", "URL", "Current Score", "Risk Level", "First Seen", "Last Updated", "Scan Count"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, e := range export.Repos {
		row := []string{
			e.RepoName,
			e.RepoURL,
			fmt.Sprintf("%.1f", e.CurrentScore),
			string(e.CurrentRisk),
			e.FirstSeen.Format("2006-01-02"),
			e.LastUpdated.Format("2006-01-02"),
			fmt.Sprintf("%d", e.ScanCount),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
