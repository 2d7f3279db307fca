package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Exit codes shared by every command.
const (
	exitOK       = 0
	exitCritical = 1 // critical issues found under --fail-on-critical
	exitFatal    = 2 // configuration or unrecoverable execution error
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "actions-auditor",
	Short: "security posture scanner for GitHub Actions workflows",
	Long: "A CLI tool that audits the GitHub Actions security posture of many repositories\n" +
		"using OpenSSF Scorecard, aggregates fleet-wide risk, and tracks score history\n" +
		"over time in a durable inventory.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitFatal)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// resolveToken returns the token from the flag, a .env file, or the process
// environment, in that order. This is the only place the environment is read
// for credentials; core packages receive the value through config.
func resolveToken(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	_ = godotenv.Load()
	return os.Getenv("GITHUB_TOKEN")
}

// fatal prints the error and exits with the unrecoverable-error code.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitFatal)
}
