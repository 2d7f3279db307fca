package report

import (
	"fmt"
	"os"
	"path/filepath"

	"actions-auditor/types"
)

// Reporter renders one ScanSummary into one presentation format.
type Reporter interface {
	// Generate writes the report and returns the path of the file created.
	Generate(summary types.ScanSummary, filename string) (string, error)
}

// ByFormat returns the reporter for a format name, or false if unknown.
func ByFormat(format, outputDir string) (Reporter, bool) {
	switch format {
	case "json":
		return &JSONReporter{OutputDir: outputDir}, true
	case "csv":
		return &CSVReporter{OutputDir: outputDir}, true
	case "markdown", "md":
		return &MarkdownReporter{OutputDir: outputDir}, true
	default:
		return nil, false
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", dir, err)
	}
	return nil
}

func outputPath(dir, filename, ext string) string {
	return filepath.Join(dir, filename+ext)
}
