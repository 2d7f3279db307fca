package types

import (
	"math"
	"sort"
	"time"
)

// TopIssueLimit caps how many recurring issues the executive summary keeps.
const TopIssueLimit = 5

// TopIssue is one recurring issue across the scanned fleet.
type TopIssue struct {
	Name          string   `json:"name"`
	Instances     int      `json:"instances"`
	ReposAffected int      `json:"repos_affected"`
	Severity      Severity `json:"severity"`
}

// RiskDistribution counts successful results per risk level.
type RiskDistribution struct {
	Critical int `json:"CRITICAL"`
	High     int `json:"HIGH"`
	Medium   int `json:"MEDIUM"`
	Low      int `json:"LOW"`
}

// ScanSummary aggregates one run's results across the whole fleet.
// Results keep the caller's input order.
type ScanSummary struct {
	TotalRepos      int          `json:"total_repos"`
	SuccessfulScans int          `json:"successful_scans"`
	FailedScans     int          `json:"failed_scans"`
	AverageScore    float64      `json:"average_score"`
	CriticalCount   int          `json:"critical_count"`
	HighCount       int          `json:"high_count"`
	MediumCount     int          `json:"medium_count"`
	LowCount        int          `json:"low_count"`
	ScanDuration    float64      `json:"scan_duration"`
	Results         []ScanResult `json:"results"`
}

// SummarizeResults folds a run's results into a ScanSummary. The average
// score covers successful results only; failed scans are counted but never
// averaged. The counts per risk level likewise cover successful results.
func SummarizeResults(results []ScanResult, duration time.Duration) ScanSummary {
	s := ScanSummary{
		TotalRepos:   len(results),
		Results:      results,
		ScanDuration: duration.Seconds(),
	}

	var sum float64
	for _, r := range results {
		if r.Failed() {
			s.FailedScans++
			continue
		}
		s.SuccessfulScans++
		if r.Score != nil {
			sum += *r.Score
		}
		switch r.RiskLevel {
		case RiskCritical:
			s.CriticalCount++
		case RiskHigh:
			s.HighCount++
		case RiskMedium:
			s.MediumCount++
		case RiskLow:
			s.LowCount++
		}
	}

	if s.SuccessfulScans > 0 {
		s.AverageScore = round2(sum / float64(s.SuccessfulScans))
	}
	return s
}

// Distribution returns the per-risk-level counts of successful results.
func (s ScanSummary) Distribution() RiskDistribution {
	return RiskDistribution{
		Critical: s.CriticalCount,
		High:     s.HighCount,
		Medium:   s.MediumCount,
		Low:      s.LowCount,
	}
}

// TopIssues ranks findings by check name across all results: instances
// descending, then distinct repositories affected descending, then name
// ascending. At most TopIssueLimit issues are returned.
func (s ScanSummary) TopIssues() []TopIssue {
	type bucket struct {
		instances int
		repos     map[string]struct{}
		severity  Severity
	}
	buckets := make(map[string]*bucket)

	for _, r := range s.Results {
		for _, w := range r.Workflows {
			for _, f := range w.Findings {
				b := buckets[f.CheckName]
				if b == nil {
					b = &bucket{repos: make(map[string]struct{}), severity: f.Severity}
					buckets[f.CheckName] = b
				}
				b.instances++
				b.repos[r.RepoName] = struct{}{}
			}
		}
	}

	issues := make([]TopIssue, 0, len(buckets))
	for name, b := range buckets {
		issues = append(issues, TopIssue{
			Name:          name,
			Instances:     b.instances,
			ReposAffected: len(b.repos),
			Severity:      b.severity,
		})
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Instances != issues[j].Instances {
			return issues[i].Instances > issues[j].Instances
		}
		if issues[i].ReposAffected != issues[j].ReposAffected {
			return issues[i].ReposAffected > issues[j].ReposAffected
		}
		return issues[i].Name < issues[j].Name
	})

	if len(issues) > TopIssueLimit {
		issues = issues[:TopIssueLimit]
	}
	return issues
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
