package config

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultParallelScans bounds the scan worker pool.
	DefaultParallelScans = 5

	// DefaultScorecardTimeout is the wall-clock limit per analyzer run.
	DefaultScorecardTimeout = 5 * time.Minute

	// DefaultScoreEpsilon is the minimum score delta the inventory diff
	// treats as a real change. Smaller deltas classify as unchanged.
	DefaultScoreEpsilon = 0.1

	// DefaultInventoryPath is where the durable inventory lives.
	DefaultInventoryPath = ".actions-auditor/inventory.json"

	// DefaultCacheTTL is how long a cached scan result stays fresh.
	DefaultCacheTTL = 24 * time.Hour
)

// DefaultChecks are the scorecard checks run when none are selected.
var DefaultChecks = []string{
	"Dangerous-Workflow",
	"Token-Permissions",
	"Pinned-Dependencies",
}

// ErrMissingToken means no GitHub token was supplied by flag or environment.
var ErrMissingToken = errors.New("GitHub token not found: set GITHUB_TOKEN or use --token")

// Config carries every tunable the scanner and inventory need. The CLI layer
// is the only place environment variables are read; core packages receive
// this struct and nothing else.
type Config struct {
	Token            string
	OutputDir        string
	Formats          []string
	Checks           []string
	FailOnCritical   bool
	Parallel         int
	ScorecardTimeout time.Duration
	ScorecardPath    string
	CacheDir         string
	CacheTTL         time.Duration
	NoCache          bool
	InventoryPath    string
	ScoreEpsilon     float64
	Verbose          bool
}

// Default returns a Config with every knob at its documented default.
func Default() Config {
	return Config{
		OutputDir:        "./reports",
		Formats:          []string{"json", "csv", "markdown"},
		Checks:           append([]string(nil), DefaultChecks...),
		Parallel:         DefaultParallelScans,
		ScorecardTimeout: DefaultScorecardTimeout,
		ScorecardPath:    "scorecard",
		CacheDir:         "./.actions-auditor-cache",
		CacheTTL:         DefaultCacheTTL,
		InventoryPath:    DefaultInventoryPath,
		ScoreEpsilon:     DefaultScoreEpsilon,
	}
}

// Validate checks the settings a scan cannot start without.
func (c Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// AllChecks reports whether the selection means "run every scorecard check".
func (c Config) AllChecks() bool {
	for _, name := range c.Checks {
		if strings.EqualFold(name, "all") {
			return true
		}
	}
	return false
}
