package types

import (
	"errors"
	"testing"
	"time"
)

func successResult(name string, score float64) ScanResult {
	return ScanResult{
		RepoName:  "owner/" + name,
		RepoURL:   "https://github.com/owner/" + name,
		Score:     &score,
		RiskLevel: RiskLevelForScore(score),
		ScanDate:  time.Now(),
	}
}

func TestSummarizeResultsCounts(t *testing.T) {
	results := []ScanResult{
		successResult("a", 3.2),
		successResult("b", 7.5),
		NewErrorResult("owner/c", "", time.Now(), errors.New("timed out")),
	}

	s := SummarizeResults(results, 90*time.Second)

	if s.TotalRepos != 3 {
		t.Errorf("TotalRepos = %d, want 3", s.TotalRepos)
	}
	if s.SuccessfulScans != 2 || s.FailedScans != 1 {
		t.Errorf("success/failed = %d/%d, want 2/1", s.SuccessfulScans, s.FailedScans)
	}
	if s.SuccessfulScans+s.FailedScans != s.TotalRepos {
		t.Error("successful + failed must equal total")
	}
	// Average covers successful results only.
	if s.AverageScore != 5.35 {
		t.Errorf("AverageScore = %v, want 5.35", s.AverageScore)
	}
	if s.CriticalCount != 1 || s.MediumCount != 1 || s.HighCount != 0 || s.LowCount != 0 {
		t.Errorf("distribution = %+v, want CRITICAL:1 MEDIUM:1", s.Distribution())
	}
	if s.ScanDuration != 90 {
		t.Errorf("ScanDuration = %v, want 90", s.ScanDuration)
	}
}

func TestSummarizeResultsEmpty(t *testing.T) {
	s := SummarizeResults(nil, 0)
	if s.TotalRepos != 0 || s.AverageScore != 0 {
		t.Errorf("empty summary should be zero-valued, got %+v", s)
	}
}

func TestSummarizeResultsPreservesOrder(t *testing.T) {
	results := []ScanResult{
		successResult("z", 9.0),
		successResult("a", 1.0),
		successResult("m", 5.0),
	}
	s := SummarizeResults(results, 0)
	for i, want := range []string{"owner/z", "owner/a", "owner/m"} {
		if s.Results[i].RepoName != want {
			t.Errorf("Results[%d] = %s, want %s", i, s.Results[i].RepoName, want)
		}
	}
}

func withFindings(name string, findings map[string]int) ScanResult {
	r := successResult(name, 5.0)
	var fs []Finding
	for check, n := range findings {
		for i := 0; i < n; i++ {
			fs = append(fs, Finding{CheckName: check, Severity: SeverityHigh})
		}
	}
	r.Workflows = []WorkflowAnalysis{{Path: ".github/workflows/ci.yml", Findings: fs}}
	return r
}

func TestTopIssuesRanking(t *testing.T) {
	results := []ScanResult{
		withFindings("a", map[string]int{"Token-Permissions": 2, "Dangerous-Workflow": 2, "Binary-Artifacts": 1}),
		withFindings("b", map[string]int{"Token-Permissions": 2, "Dangerous-Workflow": 2}),
	}
	s := SummarizeResults(results, 0)
	issues := s.TopIssues()

	if len(issues) != 3 {
		t.Fatalf("got %d issues, want 3", len(issues))
	}
	// Both top checks have 4 instances across 2 repos; the name breaks the tie.
	if issues[0].Name != "Dangerous-Workflow" || issues[1].Name != "Token-Permissions" {
		t.Errorf("tie-break order wrong: %s, %s", issues[0].Name, issues[1].Name)
	}
	if issues[0].Instances != 4 || issues[0].ReposAffected != 2 {
		t.Errorf("Dangerous-Workflow = %+v, want 4 instances across 2 repos", issues[0])
	}
	if issues[2].Name != "Binary-Artifacts" || issues[2].Instances != 1 {
		t.Errorf("unexpected third issue: %+v", issues[2])
	}
}

func TestTopIssuesTruncation(t *testing.T) {
	checks := map[string]int{
		"A": 7, "B": 6, "C": 5, "D": 4, "E": 3, "F": 2, "G": 1,
	}
	s := SummarizeResults([]ScanResult{withFindings("a", checks)}, 0)
	issues := s.TopIssues()

	if len(issues) != TopIssueLimit {
		t.Fatalf("got %d issues, want %d", len(issues), TopIssueLimit)
	}
	if issues[0].Name != "A" || issues[4].Name != "E" {
		t.Errorf("truncation kept wrong issues: first=%s last=%s", issues[0].Name, issues[4].Name)
	}
}
