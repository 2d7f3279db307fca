package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"actions-auditor/types"
)

func scanResult(name string, score float64) types.ScanResult {
	return types.ScanResult{
		RepoName:  name,
		RepoURL:   "https://github.com/" + name,
		Score:     &score,
		RiskLevel: types.RiskLevelForScore(score),
		ScanDate:  time.Now(),
		Checks: []types.CheckResult{
			{Name: "Token-Permissions", Score: int(score), Status: types.StatusWarn, Severity: types.SeverityMedium},
		},
	}
}

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "inventory.json"), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestUpdateClassification(t *testing.T) {
	s := tempStore(t)

	out, err := s.Update([]types.ScanResult{scanResult("owner/a", 5.0)})
	if err != nil {
		t.Fatal(err)
	}
	if out.New != 1 || out.Changes["owner/a"] != "new" {
		t.Fatalf("first sight should classify new, got %+v", out)
	}

	// Same score and risk on the next cycle.
	out, err = s.Update([]types.ScanResult{scanResult("owner/a", 5.0)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Unchanged != 1 || out.Changes["owner/a"] != "unchanged" {
		t.Fatalf("identical score should classify unchanged, got %+v", out)
	}

	out, err = s.Update([]types.ScanResult{scanResult("owner/a", 7.0)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Updated != 1 || out.Changes["owner/a"] != "updated" {
		t.Fatalf("moved score should classify updated, got %+v", out)
	}

	e, ok := s.Get("owner/a")
	if !ok {
		t.Fatal("entry missing after updates")
	}
	if e.ScanCount != 3 || len(e.ScoreHistory) != 3 {
		t.Errorf("scan count/history = %d/%d, want 3/3", e.ScanCount, len(e.ScoreHistory))
	}
	if e.CurrentScore != 7.0 || e.CurrentRisk != types.RiskMedium {
		t.Errorf("current = %.1f/%s, want 7.0/MEDIUM", e.CurrentScore, e.CurrentRisk)
	}
}

func TestUpdateSkipsFailedResults(t *testing.T) {
	s := tempStore(t)

	if _, err := s.Update([]types.ScanResult{scanResult("owner/a", 6.5)}); err != nil {
		t.Fatal(err)
	}

	failed := types.NewErrorResult("owner/a", "", time.Now(), errors.New("timed out"))
	out, err := s.Update([]types.ScanResult{failed})
	if err != nil {
		t.Fatal(err)
	}
	if out.New+out.Updated+out.Unchanged != 0 {
		t.Errorf("failed result must not be counted, got %+v", out)
	}

	e, _ := s.Get("owner/a")
	if e.CurrentScore != 6.5 || len(e.ScoreHistory) != 1 {
		t.Error("failed result must not overwrite prior good data")
	}
}

func TestUpdatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")

	s, err := Open(path, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Update([]types.ScanResult{scanResult("owner/a", 8.2)}); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	e, ok := reopened.Get("owner/a")
	if !ok {
		t.Fatal("entry lost across reopen")
	}
	if e.CurrentScore != 8.2 || e.CurrentRisk != types.RiskLow {
		t.Errorf("reopened entry = %.1f/%s", e.CurrentScore, e.CurrentRisk)
	}
	if len(e.LatestChecks) != 1 {
		t.Errorf("latest checks lost: %v", e.LatestChecks)
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	if err := os.WriteFile(path, []byte("{this is not an inventory"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path, 0.1)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("corrupt file must return CorruptError, got %v", err)
	}
	if corrupt.Path != path {
		t.Errorf("CorruptError.Path = %s", corrupt.Path)
	}

	// The corrupt file is left untouched for manual recovery.
	raw, err := os.ReadFile(path)
	if err != nil || string(raw) != "{this is not an inventory" {
		t.Error("corrupt file must not be modified")
	}
}

func TestSaveLeavesNoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "inventory.json"), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Update([]types.ScanResult{scanResult("owner/a", 5.0)}); err != nil {
		t.Fatal(err)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".inventory-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestOpenSurvivesCrashMidWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.json")

	s, err := Open(path, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Update([]types.ScanResult{scanResult("owner/a", 6.5)}); err != nil {
		t.Fatal(err)
	}

	// A crash between CreateTemp and Rename leaves a truncated temp file
	// next to the snapshot. It must not affect the next Open.
	truncated := filepath.Join(dir, ".inventory-123456.json")
	if err := os.WriteFile(truncated, []byte(`{"owner/a": {"repo_na`), 0o644); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path, 0.1)
	if err != nil {
		t.Fatalf("previous snapshot should still open cleanly: %v", err)
	}
	e, ok := reopened.Get("owner/a")
	if !ok || e.CurrentScore != 6.5 || len(e.ScoreHistory) != 1 {
		t.Error("previous snapshot lost after simulated crash")
	}
}

func TestListSorting(t *testing.T) {
	s := tempStore(t)
	_, err := s.Update([]types.ScanResult{
		scanResult("owner/low", 9.0),
		scanResult("owner/critical", 2.0),
		scanResult("owner/medium", 6.5),
	})
	if err != nil {
		t.Fatal(err)
	}

	byRisk := s.List(SortByRisk, "")
	if byRisk[0].RepoName != "owner/critical" || byRisk[2].RepoName != "owner/low" {
		t.Errorf("risk sort wrong: %s .. %s", byRisk[0].RepoName, byRisk[2].RepoName)
	}

	byScore := s.List(SortByScore, "")
	if byScore[0].CurrentScore != 2.0 {
		t.Errorf("score sort should put the lowest score first, got %.1f", byScore[0].CurrentScore)
	}

	byName := s.List(SortByName, "")
	if byName[0].RepoName != "owner/critical" || byName[1].RepoName != "owner/low" {
		t.Errorf("name sort wrong: %s, %s", byName[0].RepoName, byName[1].RepoName)
	}

	onlyCritical := s.List(SortByRisk, types.RiskCritical)
	if len(onlyCritical) != 1 || onlyCritical[0].RepoName != "owner/critical" {
		t.Errorf("risk filter wrong: %v", onlyCritical)
	}
}

func TestStats(t *testing.T) {
	s := tempStore(t)
	_, err := s.Update([]types.ScanResult{
		scanResult("owner/a", 3.0),
		scanResult("owner/b", 8.0),
	})
	if err != nil {
		t.Fatal(err)
	}

	st := s.Stats()
	if st.TotalRepos != 2 {
		t.Errorf("TotalRepos = %d, want 2", st.TotalRepos)
	}
	if st.AverageScore != 5.5 {
		t.Errorf("AverageScore = %v, want 5.5", st.AverageScore)
	}
	if st.RiskBreakdown[types.RiskCritical] != 1 || st.RiskBreakdown[types.RiskLow] != 1 {
		t.Errorf("risk breakdown wrong: %v", st.RiskBreakdown)
	}
}

func TestDiffClassification(t *testing.T) {
	s := tempStore(t)

	first := []types.ScanResult{
		scanResult("owner/improved", 5.2),
		scanResult("owner/regressed", 8.0),
		scanResult("owner/steady", 7.8),
		scanResult("owner/fresh", 6.0),
	}
	if _, err := s.Update(first); err != nil {
		t.Fatal(err)
	}

	second := []types.ScanResult{
		scanResult("owner/improved", 7.8),
		scanResult("owner/regressed", 6.5),
		scanResult("owner/steady", 7.75),
	}
	if _, err := s.Update(second); err != nil {
		t.Fatal(err)
	}

	report := s.Diff()

	if len(report.Improved) != 1 || report.Improved[0].RepoName != "owner/improved" {
		t.Fatalf("improved = %v", report.Improved)
	}
	if got := report.Improved[0].Delta; got < 2.59 || got > 2.61 {
		t.Errorf("improved delta = %v, want 2.6", got)
	}

	if len(report.Regressed) != 1 || report.Regressed[0].RepoName != "owner/regressed" {
		t.Fatalf("regressed = %v", report.Regressed)
	}

	// A 0.05 move sits inside the 0.1 epsilon.
	if len(report.Unchanged) != 1 || report.Unchanged[0].RepoName != "owner/steady" {
		t.Fatalf("unchanged = %v", report.Unchanged)
	}

	// A single history point is not comparable.
	for _, c := range append(append(report.Improved, report.Regressed...), report.Unchanged...) {
		if c.RepoName == "owner/fresh" {
			t.Error("repository with one history point must not appear in the diff")
		}
	}
}

func TestExportEnvelope(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Update([]types.ScanResult{scanResult("owner/a", 4.5)}); err != nil {
		t.Fatal(err)
	}

	ex := s.Export()
	if ex.TotalRepos != 1 || len(ex.Repos) != 1 {
		t.Errorf("export holds %d/%d repos, want 1/1", ex.TotalRepos, len(ex.Repos))
	}
	if ex.Summary.TotalRepos != 1 {
		t.Errorf("export summary wrong: %+v", ex.Summary)
	}
	if ex.ExportedAt.IsZero() {
		t.Error("ExportedAt must be set")
	}
}
