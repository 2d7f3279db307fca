package inventory

import (
	"sort"
	"time"

	"actions-auditor/types"
)

// Change describes the movement between a repository's last two history
// points.
type Change struct {
	RepoName      string          `json:"repo_name"`
	PreviousScore float64         `json:"previous_score"`
	CurrentScore  float64         `json:"current_score"`
	Delta         float64         `json:"delta"`
	PreviousRisk  types.RiskLevel `json:"previous_risk"`
	CurrentRisk   types.RiskLevel `json:"current_risk"`
	Date          time.Time       `json:"date"`
}

// DiffReport buckets every repository with at least two history points.
type DiffReport struct {
	Improved  []Change
	Regressed []Change
	Unchanged []Change
}

// Diff compares the last two history points of every tracked repository.
// A delta whose magnitude is within the store's epsilon classifies as
// unchanged; beyond it, the sign decides improved or regressed. Improved and
// regressed lists are ordered by delta magnitude, biggest movement first.
func (s *Store) Diff() DiffReport {
	var report DiffReport

	for _, e := range s.data {
		n := len(e.ScoreHistory)
		if n < 2 {
			continue
		}
		prev, curr := e.ScoreHistory[n-2], e.ScoreHistory[n-1]

		change := Change{
			RepoName:      e.RepoName,
			PreviousScore: prev.Score,
			CurrentScore:  curr.Score,
			Delta:         curr.Score - prev.Score,
			PreviousRisk:  prev.Risk,
			CurrentRisk:   curr.Risk,
			Date:          curr.Date,
		}

		switch {
		case change.Delta > s.epsilon:
			report.Improved = append(report.Improved, change)
		case change.Delta < -s.epsilon:
			report.Regressed = append(report.Regressed, change)
		default:
			report.Unchanged = append(report.Unchanged, change)
		}
	}

	sort.Slice(report.Improved, func(i, j int) bool {
		return report.Improved[i].Delta > report.Improved[j].Delta
	})
	sort.Slice(report.Regressed, func(i, j int) bool {
		return report.Regressed[i].Delta < report.Regressed[j].Delta
	})
	sort.Slice(report.Unchanged, func(i, j int) bool {
		return report.Unchanged[i].RepoName < report.Unchanged[j].RepoName
	})
	return report
}
