package analyze

import (
	"regexp"
	"strings"

	"actions-auditor/scorecard"
	"actions-auditor/types"
)

var workflowPathRe = regexp.MustCompile(`\.github/workflows/[\w\-.]+\.ya?ml`)

// ExtractWorkflows expands per-check details into findings grouped by
// workflow file. Files appear in first-seen order and findings keep their
// discovery order within each file.
func ExtractWorkflows(payload *scorecard.Payload, checks []types.CheckResult) []types.WorkflowAnalysis {
	if payload == nil || len(checks) == 0 {
		return nil
	}

	severityByName := make(map[string]types.Severity, len(checks))
	for _, c := range checks {
		severityByName[c.Name] = c.Severity
	}

	var order []string
	grouped := make(map[string][]types.Finding)

	for _, rc := range payload.Checks {
		sev, ok := severityByName[rc.Name]
		if !ok {
			continue
		}
		for _, d := range rc.Details {
			path := workflowPath(d)
			if path == "" {
				continue
			}
			if _, seen := grouped[path]; !seen {
				order = append(order, path)
			}
			grouped[path] = append(grouped[path], types.Finding{
				CheckName:      rc.Name,
				Severity:       sev,
				Message:        d.Msg,
				LineNumber:     d.Line,
				Snippet:        d.Snippet,
				Recommendation: recommendation(rc.Name, d.Msg),
			})
		}
	}

	analyses := make([]types.WorkflowAnalysis, 0, len(order))
	for _, path := range order {
		analyses = append(analyses, types.WorkflowAnalysis{Path: path, Findings: grouped[path]})
	}
	return analyses
}

// workflowPath pulls the workflow file the detail refers to, preferring the
// structured path field and falling back to scanning the message text.
func workflowPath(d scorecard.RawDetail) string {
	if strings.Contains(d.Path, ".github/workflows/") {
		return d.Path
	}
	return workflowPathRe.FindString(d.Msg)
}

func recommendation(checkName, message string) string {
	switch checkName {
	case "Dangerous-Workflow":
		return recommendDangerousWorkflow(message)
	case "Token-Permissions":
		return recommendTokenPermissions(message)
	case "Pinned-Dependencies":
		return recommendPinnedDependencies(message)
	default:
		return "Review and remediate this security issue."
	}
}

func recommendDangerousWorkflow(message string) string {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "pull_request_target") {
		return "Replace 'pull_request_target' with 'pull_request'. If pull_request_target is unavoidable, add explicit permission checks and never check out PR code."
	}
	if strings.Contains(lower, "untrusted") || strings.Contains(lower, "injection") {
		return "Do not interpolate untrusted input into shell commands. Pass values through environment variables or the GITHUB_ENV file instead."
	}
	return "Review the workflow for dangerous patterns and follow GitHub Actions security hardening guidance."
}

func recommendTokenPermissions(message string) string {
	if strings.Contains(strings.ToLower(message), "write") {
		return "Declare minimal permissions. Replace 'permissions: write-all' with the specific scopes each job needs, e.g. contents: read."
	}
	return "Review and minimize token permissions to only what the workflow needs."
}

var actionRefRe = regexp.MustCompile(`([\w\-]+/[\w\-]+)@v?\d+`)

func recommendPinnedDependencies(message string) string {
	if m := actionRefRe.FindStringSubmatch(message); m != nil {
		return "Pin '" + m[1] + "' to a full commit SHA instead of a tag. Tags are mutable and can be repointed at malicious code."
	}
	return "Pin all GitHub Actions to full commit SHAs instead of tags, e.g. uses: actions/checkout@8e5e7e5ab8b370d6c329ec480221332ada57f0ab"
}
