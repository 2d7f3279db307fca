package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"actions-auditor/analyze"
	"actions-auditor/config"
	"actions-auditor/scorecard"
	"actions-auditor/types"
)

var (
	importOutput   string
	importFormats  string
	importRepoName string
)

var importScorecardCmd = &cobra.Command{
	Use:   "import-scorecard FILE",
	Short: "Generate reports from an existing scorecard JSON file",
	Long: "Feed a scorecard JSON report produced elsewhere through the normalizer and\n" +
		"generate reports, without invoking the analyzer.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			fatal(fmt.Errorf("cannot read scorecard file: %w", err))
		}

		var payload scorecard.Payload
		if err := json.Unmarshal(raw, &payload); err != nil {
			fatal(fmt.Errorf("invalid scorecard JSON: %w", err))
		}

		repoName := importRepoName
		if repoName == "" {
			repoName = strings.TrimPrefix(payload.Repo.Name, "github.com/")
			if repoName == "" {
				repoName = "unknown-repo"
			}
		}
		repoURL := "https://github.com/" + repoName

		result := analyze.Normalize(&payload, repoName, repoURL, time.Now())
		if result.Failed() {
			fatal(fmt.Errorf("scorecard file could not be normalized: %s", result.Error))
		}

		summary := types.SummarizeResults([]types.ScanResult{result}, 0)

		fmt.Println("✓ Successfully parsed scorecard data")
		printSummary(summary)

		cfg := config.Default()
		cfg.OutputDir = importOutput
		cfg.Formats = splitList(importFormats)

		fmt.Println("\nGenerating reports...")
		generateReports(summary, cfg)
		fmt.Printf("\n✅ Reports generated in: %s\n", importOutput)
	},
}

func init() {
	importScorecardCmd.Flags().StringVarP(&importOutput, "output", "d", "./reports", "output directory for reports")
	importScorecardCmd.Flags().StringVarP(&importFormats, "format", "f", "json,csv,markdown", "report formats, comma-separated")
	importScorecardCmd.Flags().StringVar(&importRepoName, "repo-name", "", "repository name, auto-detected from the JSON if omitted")

	rootCmd.AddCommand(importScorecardCmd)
}
