package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"actions-auditor/config"
	"actions-auditor/report"
	"actions-auditor/scanner"
	"actions-auditor/scorecard"
	"actions-auditor/source"
	"actions-auditor/types"
)

var (
	scanRepo           string
	scanOrg            string
	scanUser           string
	scanExclude        string
	scanOnly           string
	scanOutput         string
	scanFormats        string
	scanChecks         string
	scanAllChecks      bool
	scanFailOnCritical bool
	scanToken          string
	scanParallel       int
	scanIncludeForks   bool
	scanNoCache        bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan repositories for GitHub Actions security issues",
	Long: "Scan a repository, an organization, or a user account with OpenSSF Scorecard\n" +
		"and generate reports. Exactly one of --repo, --org or --user must be given.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildScanConfig()
		if err != nil {
			fatal(err)
		}

		ctx := context.Background()
		summary := runScan(ctx, cfg)

		printSummary(summary)

		fmt.Println("\nGenerating reports...")
		generateReports(summary, cfg)

		if cfg.FailOnCritical {
			for _, r := range summary.Results {
				if r.HasCriticalIssues() {
					fmt.Println("\n❌ Critical security issues found!")
					os.Exit(exitCritical)
				}
			}
		}

		fmt.Println("\n✅ Scan complete")
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanRepo, "repo", "r", "", "scan a single repository (owner/repo)")
	scanCmd.Flags().StringVarP(&scanOrg, "org", "o", "", "scan all repositories in an organization")
	scanCmd.Flags().StringVarP(&scanUser, "user", "u", "", "scan all repositories of a user account")
	scanCmd.Flags().StringVar(&scanExclude, "exclude", "", "comma-separated repositories to exclude")
	scanCmd.Flags().StringVar(&scanOnly, "only", "", "comma-separated repositories to scan, all others excluded")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "d", "./reports", "output directory for reports")
	scanCmd.Flags().StringVarP(&scanFormats, "format", "f", "json,csv,markdown", "report formats, comma-separated")
	scanCmd.Flags().StringVarP(&scanChecks, "checks", "c", "", "scorecard checks to run, comma-separated")
	scanCmd.Flags().BoolVar(&scanAllChecks, "all-checks", false, "run every scorecard check")
	scanCmd.Flags().BoolVar(&scanFailOnCritical, "fail-on-critical", false, "exit 1 when critical issues are found")
	scanCmd.Flags().StringVarP(&scanToken, "token", "t", "", "GitHub token (or set GITHUB_TOKEN)")
	scanCmd.Flags().IntVarP(&scanParallel, "parallel", "p", config.DefaultParallelScans, "number of parallel scans")
	scanCmd.Flags().BoolVar(&scanIncludeForks, "include-forks", false, "include forked repositories for user scans")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "skip the local result cache")

	rootCmd.AddCommand(scanCmd)
}

func buildScanConfig() (config.Config, error) {
	specified := 0
	for _, s := range []string{scanRepo, scanOrg, scanUser} {
		if s != "" {
			specified++
		}
	}
	if specified == 0 {
		return config.Config{}, fmt.Errorf("must specify one of --repo, --org or --user")
	}
	if specified > 1 {
		return config.Config{}, fmt.Errorf("cannot specify more than one of --repo, --org, --user")
	}

	cfg := config.Default()
	cfg.Token = resolveToken(scanToken)
	cfg.OutputDir = scanOutput
	cfg.Formats = splitList(scanFormats)
	cfg.FailOnCritical = scanFailOnCritical
	cfg.Parallel = scanParallel
	cfg.NoCache = scanNoCache
	cfg.Verbose = verboseFlag

	if dir := os.Getenv("AUDITOR_OUTPUT_DIR"); dir != "" && scanOutput == "./reports" {
		cfg.OutputDir = dir
	}
	if checks := os.Getenv("AUDITOR_CHECKS"); checks != "" && scanChecks == "" {
		cfg.Checks = splitList(checks)
	}
	if scanChecks != "" {
		cfg.Checks = splitList(scanChecks)
	}
	if scanAllChecks {
		cfg.Checks = []string{"all"}
	}

	return cfg, cfg.Validate()
}

// runScan resolves the repository list and drives the scan coordinator.
// Setup failures are fatal; per-repository failures are not.
func runScan(ctx context.Context, cfg config.Config) types.ScanSummary {
	runner := scorecard.NewRunner(cfg.ScorecardPath, cfg.ScorecardTimeout, cfg.Token)
	if err := runner.CheckInstall(ctx); err != nil {
		fatal(err)
	}

	repos := resolveRepos(ctx, cfg)
	fmt.Printf("Found %d repositories to scan\n\n", len(repos))

	var cache *scanner.Cache
	if !cfg.NoCache {
		var err error
		cache, err = scanner.NewCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
		}
	}

	return scanner.New(cfg, runner, cache).Run(ctx, repos)
}

func resolveRepos(ctx context.Context, cfg config.Config) []source.Repo {
	provider := source.NewProvider(ctx, cfg.Token)
	filter := source.Filter{
		Exclude:      splitList(scanExclude),
		Only:         splitList(scanOnly),
		IncludeForks: scanIncludeForks,
	}

	switch {
	case scanRepo != "":
		fmt.Printf("Scanning repository: %s\n", scanRepo)
		r, err := provider.Single(ctx, scanRepo)
		if err != nil {
			fatal(err)
		}
		return []source.Repo{r}
	case scanOrg != "":
		fmt.Printf("Scanning organization: %s\n", scanOrg)
		repos, err := provider.Org(ctx, scanOrg, filter)
		if err != nil {
			fatal(err)
		}
		return repos
	default:
		name := scanUser
		if name == "" {
			name = "authenticated user"
		}
		fmt.Printf("Scanning user account: %s\n", name)
		repos, err := provider.User(ctx, scanUser, filter)
		if err != nil {
			fatal(err)
		}
		return repos
	}
}

func printSummary(summary types.ScanSummary) {
	fmt.Println("\n📊 Scan Summary")
	fmt.Printf("  Total Repositories: %d\n", summary.TotalRepos)
	fmt.Printf("  Successful Scans:   %d\n", summary.SuccessfulScans)
	fmt.Printf("  Failed Scans:       %d\n", summary.FailedScans)
	fmt.Printf("  Average Score:      %.1f/10.0\n", summary.AverageScore)
	fmt.Printf("  Scan Duration:      %.1fs\n", summary.ScanDuration)

	fmt.Println("\nRisk Distribution:")
	fmt.Printf("  🔴 Critical: %d\n", summary.CriticalCount)
	fmt.Printf("  🟠 High:     %d\n", summary.HighCount)
	fmt.Printf("  🟡 Medium:   %d\n", summary.MediumCount)
	fmt.Printf("  🟢 Low:      %d\n", summary.LowCount)
}

func generateReports(summary types.ScanSummary, cfg config.Config) {
	for _, format := range cfg.Formats {
		format = strings.ToLower(strings.TrimSpace(format))
		reporter, ok := report.ByFormat(format, cfg.OutputDir)
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: unknown format %q, skipping\n", format)
			continue
		}
		path, err := reporter.Generate(summary, "report")
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", strings.ToUpper(format), err)
			continue
		}
		fmt.Printf("  ✓ %s: %s\n", strings.ToUpper(format), path)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
