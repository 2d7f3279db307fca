package analyze

import (
	"fmt"
	"time"

	"actions-auditor/scorecard"
	"actions-auditor/types"
)

// NormalizeError means a raw payload was missing the fields the canonical
// model requires. It is captured as the result's error, never raised past
// the normalizer.
type NormalizeError struct {
	Repo   string
	Reason string
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("cannot normalize scorecard payload for %s: %s", e.Repo, e.Reason)
}

// Normalize maps one repository's raw scorecard payload into the canonical
// ScanResult. An invalid payload produces the failure form of the result
// rather than an error return, so a bad payload never aborts a batch.
func Normalize(payload *scorecard.Payload, repoName, repoURL string, now time.Time) types.ScanResult {
	if payload == nil {
		return types.NewErrorResult(repoName, repoURL, now, &NormalizeError{Repo: repoName, Reason: "payload is empty"})
	}
	if payload.Score == nil {
		return types.NewErrorResult(repoName, repoURL, now, &NormalizeError{Repo: repoName, Reason: "payload has no overall score"})
	}

	score := *payload.Score
	checks := normalizeChecks(payload.Checks)

	return types.ScanResult{
		RepoName:  repoName,
		RepoURL:   repoURL,
		Score:     &score,
		RiskLevel: types.RiskLevelForScore(score),
		ScanDate:  now,
		Checks:    checks,
		Workflows: ExtractWorkflows(payload, checks),
		Metadata:  metadata(payload),
	}
}

func normalizeChecks(raw []scorecard.RawCheck) []types.CheckResult {
	checks := make([]types.CheckResult, 0, len(raw))
	for _, rc := range raw {
		name := rc.Name
		if name == "" {
			name = "Unknown"
		}

		details := make([]string, 0, len(rc.Details))
		for _, d := range rc.Details {
			details = append(details, d.String())
		}

		score := rc.Score
		if score < 0 {
			score = 0
		}

		checks = append(checks, types.CheckResult{
			Name:             name,
			Score:            score,
			Status:           statusForScore(rc.Score),
			Reason:           rc.Reason,
			DocumentationURL: rc.Documentation.URL,
			Severity:         SeverityForCheck(name),
			Details: &types.CheckDetails{
				Short:   rc.Documentation.Short,
				Details: details,
			},
		})
	}
	return checks
}

// statusForScore maps a raw check score to a status. Scorecard reports -1
// for checks it could not run.
func statusForScore(score int) types.Status {
	switch {
	case score == -1:
		return types.StatusSkip
	case score >= 7:
		return types.StatusPass
	case score >= 4:
		return types.StatusWarn
	default:
		return types.StatusFail
	}
}

func metadata(payload *scorecard.Payload) map[string]any {
	version := payload.Scorecard.Version
	if version == "" {
		version = "unknown"
	}
	return map[string]any{
		"has_workflows":    true,
		"analyzer_version": version,
		"analyzer_commit":  payload.Scorecard.Commit,
		"repo_commit":      payload.Repo.Commit,
		"analyzer_date":    payload.Date,
	}
}
