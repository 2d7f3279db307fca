package types

import "time"

// Severity classifies how serious a single check or finding is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusWarn  Status = "WARN"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
	StatusSkip  Status = "SKIP"
)

// RiskLevel classifies a repository's overall posture from its score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// RiskLevelForScore maps an overall 0-10 score to a risk level.
// Boundaries are inclusive on the lower edge of each band.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score >= 8.0:
		return RiskLow
	case score >= 6.0:
		return RiskMedium
	case score >= 4.0:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// Finding is one concrete security observation tied to a workflow file.
type Finding struct {
	CheckName      string   `json:"check_name"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	LineNumber     *int     `json:"line_number"`
	Snippet        string   `json:"snippet,omitempty"`
	Recommendation string   `json:"recommendation"`
}

// CheckDetails carries the raw material a check's findings were derived from.
type CheckDetails struct {
	Short   string   `json:"short"`
	Details []string `json:"details"`
}

// CheckResult is the outcome of one named security check for a repository.
type CheckResult struct {
	Name             string        `json:"name"`
	Score            int           `json:"score"`
	Status           Status        `json:"status"`
	Reason           string        `json:"reason"`
	DocumentationURL string        `json:"documentation_url"`
	Severity         Severity      `json:"severity"`
	Details          *CheckDetails `json:"details,omitempty"`
}

// WorkflowAnalysis groups the findings for one workflow file. Findings keep
// their discovery order within the file.
type WorkflowAnalysis struct {
	Path     string    `json:"path"`
	Findings []Finding `json:"findings"`
}

// CountBySeverity returns how many findings the workflow has per severity.
func (w WorkflowAnalysis) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range w.Findings {
		counts[f.Severity]++
	}
	return counts
}

// ScanResult is one repository's scan outcome. A result is either a success
// (Score set, Error empty) or a failure (Error set, Score nil, no checks or
// workflows), never both.
type ScanResult struct {
	RepoName  string             `json:"repo_name"`
	RepoURL   string             `json:"repo_url"`
	Score     *float64           `json:"score"`
	RiskLevel RiskLevel          `json:"risk_level"`
	ScanDate  time.Time          `json:"scan_date"`
	Checks    []CheckResult      `json:"checks"`
	Workflows []WorkflowAnalysis `json:"workflows"`
	Metadata  map[string]any     `json:"metadata"`
	Error     string             `json:"error,omitempty"`
}

// Failed reports whether the scan produced no usable data.
func (r ScanResult) Failed() bool {
	return r.Error != ""
}

// HasCriticalIssues reports whether any check failed at critical severity.
func (r ScanResult) HasCriticalIssues() bool {
	for _, c := range r.Checks {
		if c.Severity == SeverityCritical && c.Status == StatusFail {
			return true
		}
	}
	return false
}

// NewErrorResult builds the failure form of a ScanResult.
func NewErrorResult(repoName, repoURL string, scanDate time.Time, err error) ScanResult {
	return ScanResult{
		RepoName:  repoName,
		RepoURL:   repoURL,
		RiskLevel: RiskCritical,
		ScanDate:  scanDate,
		Metadata:  map[string]any{},
		Error:     err.Error(),
	}
}
