package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"actions-auditor/config"
	"actions-auditor/inventory"
	"actions-auditor/report"
	"actions-auditor/scanner"
	"actions-auditor/scorecard"
	"actions-auditor/source"
	"actions-auditor/types"
)

var (
	invOrg          string
	invUser         string
	invExclude      string
	invOnly         string
	invToken        string
	invIncludeForks bool
	invSort         string
	invFilterRisk   string
	invExportOutput string
	invExportFormat string
	invPath         string
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage the durable repository inventory",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var inventoryUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Scan repositories and fold the results into the inventory",
	Run: func(cmd *cobra.Command, args []string) {
		if (invOrg == "") == (invUser == "") {
			fatal(fmt.Errorf("must specify exactly one of --org or --user"))
		}

		cfg := config.Default()
		cfg.Token = resolveToken(invToken)
		cfg.InventoryPath = invPath
		if err := cfg.Validate(); err != nil {
			fatal(err)
		}

		// Open the store before scanning so a corrupt file aborts early,
		// not after minutes of analyzer work.
		store, err := inventory.Open(cfg.InventoryPath, cfg.ScoreEpsilon)
		if err != nil {
			fatal(err)
		}

		ctx := context.Background()
		runner := scorecard.NewRunner(cfg.ScorecardPath, cfg.ScorecardTimeout, cfg.Token)
		if err := runner.CheckInstall(ctx); err != nil {
			fatal(err)
		}

		provider := source.NewProvider(ctx, cfg.Token)
		filter := source.Filter{
			Exclude:      splitList(invExclude),
			Only:         splitList(invOnly),
			IncludeForks: invIncludeForks,
		}

		var repos []source.Repo
		if invOrg != "" {
			fmt.Printf("Scanning organization: %s\n", invOrg)
			repos, err = provider.Org(ctx, invOrg, filter)
		} else {
			fmt.Printf("Scanning user account: %s\n", invUser)
			repos, err = provider.User(ctx, invUser, filter)
		}
		if err != nil {
			fatal(err)
		}

		summary := scanner.New(cfg, runner, nil).Run(ctx, repos)

		fmt.Println("\nUpdating inventory...")
		outcome, err := store.Update(summary.Results)
		if err != nil {
			fatal(err)
		}

		fmt.Println("\n✅ Inventory updated")
		fmt.Printf("  🆕 New repositories:     %d\n", outcome.New)
		fmt.Printf("  📝 Updated repositories: %d\n", outcome.Updated)
		fmt.Printf("  ✓  Unchanged:            %d\n", outcome.Unchanged)
		if summary.FailedScans > 0 {
			fmt.Printf("  ⚠️  Failed scans (not recorded): %d\n", summary.FailedScans)
		}
		fmt.Printf("\nInventory stored in: %s\n", cfg.InventoryPath)
	},
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked repositories with their current scores",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		entries := store.List(inventory.SortKey(invSort), types.RiskLevel(invFilterRisk))

		if len(entries) == 0 {
			fmt.Println("Inventory is empty. Run 'actions-auditor inventory update' first.")
			return
		}

		fmt.Printf("%-40s %8s %10s %6s %12s\n", "REPOSITORY", "SCORE", "RISK", "SCANS", "UPDATED")
		for _, e := range entries {
			fmt.Printf("%-40s %7.1f %10s %6d %12s\n",
				e.RepoName, e.CurrentScore, e.CurrentRisk, e.ScanCount,
				e.LastUpdated.Format("2006-01-02"))
		}

		stats := store.Stats()
		fmt.Printf("\nTotal: %d repos, average score %.1f/10\n", stats.TotalRepos, stats.AverageScore)
		fmt.Printf("  🔴 Critical: %d  🟠 High: %d  🟡 Medium: %d  🟢 Low: %d\n",
			stats.RiskBreakdown[types.RiskCritical],
			stats.RiskBreakdown[types.RiskHigh],
			stats.RiskBreakdown[types.RiskMedium],
			stats.RiskBreakdown[types.RiskLow])
	},
}

var inventoryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the inventory to JSON and CSV",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		if store.Len() == 0 {
			fmt.Println("Inventory is empty. Run 'actions-auditor inventory update' first.")
			return
		}

		if err := os.MkdirAll(invExportOutput, 0o755); err != nil {
			fatal(err)
		}

		export := store.Export()
		for _, format := range splitList(invExportFormat) {
			switch format {
			case "json":
				path := filepath.Join(invExportOutput, "inventory.json")
				if err := report.WriteInventoryJSON(path, export); err != nil {
					fatal(err)
				}
				fmt.Printf("  ✓ JSON: %s\n", path)
			case "csv":
				path := filepath.Join(invExportOutput, "inventory.csv")
				if err := report.WriteInventoryCSV(path, export); err != nil {
					fatal(err)
				}
				fmt.Printf("  ✓ CSV: %s\n", path)
			default:
				fmt.Fprintf(os.Stderr, "warning: unknown export format %q, skipping\n", format)
			}
		}
		fmt.Printf("\n✅ Inventory exported to: %s\n", invExportOutput)
	},
}

var inventoryDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show score changes since the previous scan",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		diff := store.Diff()

		if len(diff.Improved) == 0 && len(diff.Regressed) == 0 && len(diff.Unchanged) == 0 {
			fmt.Println("No repositories have enough history to compare yet.")
			return
		}

		if len(diff.Improved) > 0 {
			fmt.Println("📈 Improved:")
			for _, c := range diff.Improved {
				fmt.Printf("  %s: %.1f → %.1f (+%.1f)\n", c.RepoName, c.PreviousScore, c.CurrentScore, c.Delta)
			}
		}
		if len(diff.Regressed) > 0 {
			fmt.Println("📉 Regressed:")
			for _, c := range diff.Regressed {
				fmt.Printf("  %s: %.1f → %.1f (%.1f)\n", c.RepoName, c.PreviousScore, c.CurrentScore, c.Delta)
			}
		}
		if len(diff.Improved) == 0 && len(diff.Regressed) == 0 {
			fmt.Println("All repositories are stable since the last scan.")
		}
	},
}

func openStore() *inventory.Store {
	store, err := inventory.Open(invPath, config.DefaultScoreEpsilon)
	if err != nil {
		fatal(err)
	}
	return store
}

func init() {
	inventoryCmd.PersistentFlags().StringVar(&invPath, "inventory-file", config.DefaultInventoryPath, "path to the inventory file")

	inventoryUpdateCmd.Flags().StringVarP(&invOrg, "org", "o", "", "organization to scan")
	inventoryUpdateCmd.Flags().StringVarP(&invUser, "user", "u", "", "user account to scan")
	inventoryUpdateCmd.Flags().StringVar(&invExclude, "exclude", "", "comma-separated repositories to exclude")
	inventoryUpdateCmd.Flags().StringVar(&invOnly, "only", "", "comma-separated repositories to scan")
	inventoryUpdateCmd.Flags().StringVarP(&invToken, "token", "t", "", "GitHub token (or set GITHUB_TOKEN)")
	inventoryUpdateCmd.Flags().BoolVar(&invIncludeForks, "include-forks", false, "include forked repositories for user scans")

	inventoryListCmd.Flags().StringVar(&invSort, "sort", "risk", "sort by: risk, score, name, updated")
	inventoryListCmd.Flags().StringVar(&invFilterRisk, "filter-risk", "", "show only repos at this risk level")

	inventoryExportCmd.Flags().StringVarP(&invExportOutput, "output", "d", "./inventory-export", "output directory")
	inventoryExportCmd.Flags().StringVarP(&invExportFormat, "format", "f", "json,csv", "export formats, comma-separated")

	inventoryCmd.AddCommand(inventoryUpdateCmd, inventoryListCmd, inventoryExportCmd, inventoryDiffCmd)
	rootCmd.AddCommand(inventoryCmd)
}
