package inventory

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"actions-auditor/types"
)

// HistoryPoint is one snapshot in a repository's score history. History is
// append-only: points are never rewritten or truncated.
type HistoryPoint struct {
	Date  time.Time       `json:"date"`
	Score float64         `json:"score"`
	Risk  types.RiskLevel `json:"risk"`
}

// CheckSnapshot is the condensed form of a check kept in latest_checks.
type CheckSnapshot struct {
	Score    int            `json:"score"`
	Status   types.Status   `json:"status"`
	Severity types.Severity `json:"severity"`
}

// Entry is the durable record for one repository.
type Entry struct {
	RepoName     string                   `json:"repo_name"`
	RepoURL      string                   `json:"repo_url"`
	CurrentScore float64                  `json:"current_score"`
	CurrentRisk  types.RiskLevel          `json:"current_risk"`
	FirstSeen    time.Time                `json:"first_seen"`
	LastUpdated  time.Time                `json:"last_updated"`
	ScanCount    int                      `json:"scan_count"`
	ScoreHistory []HistoryPoint           `json:"score_history"`
	LatestChecks map[string]CheckSnapshot `json:"latest_checks"`
	Metadata     map[string]any           `json:"metadata"`
}

// CorruptError means the inventory file exists but cannot be read as an
// inventory. The caller must treat this as fatal; silently starting over
// would erase history.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("inventory file %s is unreadable: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Outcome tallies what an update cycle did.
type Outcome struct {
	New       int
	Updated   int
	Unchanged int
	// Changes records the per-repository classification.
	Changes map[string]string
}

// Store is the durable repository inventory: a JSON file mapping
// "owner/repo" to an Entry. One local process owns write access per update
// cycle; there is no cross-machine locking.
type Store struct {
	path    string
	epsilon float64
	data    map[string]*Entry
	now     func() time.Time
}

// Open loads the inventory at path, creating an empty one if the file does
// not exist yet. epsilon is the minimum score delta Diff treats as a change.
func Open(path string, epsilon float64) (*Store, error) {
	s := &Store{
		path:    path,
		epsilon: epsilon,
		data:    make(map[string]*Entry),
		now:     time.Now,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return s, nil
}

// Update folds scan results into the inventory and persists it. Failed
// results never touch the store: a failed scan must not erase prior good
// data. Each call appends exactly one history point per successful repo.
func (s *Store) Update(results []types.ScanResult) (Outcome, error) {
	out := Outcome{Changes: make(map[string]string)}
	now := s.now()

	for _, r := range results {
		if r.Failed() || r.Score == nil {
			continue
		}
		score := *r.Score
		point := HistoryPoint{Date: now, Score: score, Risk: r.RiskLevel}

		entry, exists := s.data[r.RepoName]
		if !exists {
			s.data[r.RepoName] = &Entry{
				RepoName:     r.RepoName,
				RepoURL:      r.RepoURL,
				CurrentScore: score,
				CurrentRisk:  r.RiskLevel,
				FirstSeen:    now,
				LastUpdated:  now,
				ScanCount:    1,
				ScoreHistory: []HistoryPoint{point},
				LatestChecks: snapshotChecks(r.Checks),
				Metadata:     r.Metadata,
			}
			out.New++
			out.Changes[r.RepoName] = "new"
			continue
		}

		if entry.CurrentScore != score || entry.CurrentRisk != r.RiskLevel {
			out.Updated++
			out.Changes[r.RepoName] = "updated"
		} else {
			out.Unchanged++
			out.Changes[r.RepoName] = "unchanged"
		}

		entry.CurrentScore = score
		entry.CurrentRisk = r.RiskLevel
		entry.LastUpdated = now
		entry.ScanCount++
		entry.ScoreHistory = append(entry.ScoreHistory, point)
		entry.LatestChecks = snapshotChecks(r.Checks)
	}

	if err := s.save(); err != nil {
		return out, err
	}
	return out, nil
}

// save persists the whole inventory crash-safely: the new state is written
// to a temporary file in the same directory and renamed into place, so a
// crash mid-write leaves the previous snapshot intact.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".inventory-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

func snapshotChecks(checks []types.CheckResult) map[string]CheckSnapshot {
	snap := make(map[string]CheckSnapshot, len(checks))
	for _, c := range checks {
		snap[c.Name] = CheckSnapshot{Score: c.Score, Status: c.Status, Severity: c.Severity}
	}
	return snap
}

// Get returns the entry for one repository.
func (s *Store) Get(repoName string) (*Entry, bool) {
	e, ok := s.data[repoName]
	return e, ok
}

// SortKey selects the ordering of List.
type SortKey string

const (
	SortByRisk    SortKey = "risk"
	SortByScore   SortKey = "score"
	SortByName    SortKey = "name"
	SortByUpdated SortKey = "updated"
)

var riskOrder = map[types.RiskLevel]int{
	types.RiskCritical: 0,
	types.RiskHigh:     1,
	types.RiskMedium:   2,
	types.RiskLow:      3,
}

// List returns entries ordered by the sort key, optionally keeping only one
// risk level. filterRisk empty means no filter.
func (s *Store) List(key SortKey, filterRisk types.RiskLevel) []Entry {
	entries := make([]Entry, 0, len(s.data))
	for _, e := range s.data {
		if filterRisk != "" && e.CurrentRisk != filterRisk {
			continue
		}
		entries = append(entries, *e)
	}

	switch key {
	case SortByScore:
		sort.Slice(entries, func(i, j int) bool { return entries[i].CurrentScore < entries[j].CurrentScore })
	case SortByName:
		sort.Slice(entries, func(i, j int) bool { return entries[i].RepoName < entries[j].RepoName })
	case SortByUpdated:
		sort.Slice(entries, func(i, j int) bool { return entries[i].LastUpdated.After(entries[j].LastUpdated) })
	default:
		sort.Slice(entries, func(i, j int) bool {
			if riskOrder[entries[i].CurrentRisk] != riskOrder[entries[j].CurrentRisk] {
				return riskOrder[entries[i].CurrentRisk] < riskOrder[entries[j].CurrentRisk]
			}
			return entries[i].RepoName < entries[j].RepoName
		})
	}
	return entries
}

// Stats summarizes the current inventory state.
type Stats struct {
	TotalRepos    int                     `json:"total_repos"`
	AverageScore  float64                 `json:"avg_score"`
	RiskBreakdown map[types.RiskLevel]int `json:"risk_breakdown"`
	LastUpdated   time.Time               `json:"last_updated"`
}

// Stats computes summary statistics over every entry.
func (s *Store) Stats() Stats {
	st := Stats{
		RiskBreakdown: map[types.RiskLevel]int{
			types.RiskCritical: 0,
			types.RiskHigh:     0,
			types.RiskMedium:   0,
			types.RiskLow:      0,
		},
	}
	if len(s.data) == 0 {
		return st
	}

	var sum float64
	for _, e := range s.data {
		st.TotalRepos++
		sum += e.CurrentScore
		st.RiskBreakdown[e.CurrentRisk]++
		if e.LastUpdated.After(st.LastUpdated) {
			st.LastUpdated = e.LastUpdated
		}
	}
	st.AverageScore = math.Round(sum/float64(st.TotalRepos)*100) / 100
	return st
}

// Export is the envelope renderers consume when exporting the inventory.
type Export struct {
	ExportedAt time.Time `json:"exported_at"`
	TotalRepos int       `json:"total_repos"`
	Summary    Stats     `json:"summary"`
	Repos      []Entry   `json:"repositories"`
}

// Export packages the whole inventory for rendering.
func (s *Store) Export() Export {
	return Export{
		ExportedAt: s.now(),
		TotalRepos: len(s.data),
		Summary:    s.Stats(),
		Repos:      s.List(SortByRisk, ""),
	}
}

// Len reports how many repositories the inventory tracks.
func (s *Store) Len() int { return len(s.data) }
