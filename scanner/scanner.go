package scanner

import (
	"context"
	"log"
	"sync"
	"time"

	"actions-auditor/analyze"
	"actions-auditor/config"
	"actions-auditor/scorecard"
	"actions-auditor/source"
	"actions-auditor/types"
)

// Executor runs the external analyzer for one repository. *scorecard.Runner
// is the production implementation; tests substitute stubs.
type Executor interface {
	Run(ctx context.Context, repo string, checks []string) (*scorecard.Payload, error)
}

// Scanner fans a repository list out over a bounded worker pool and folds
// the per-repository results into a fleet summary.
type Scanner struct {
	cfg      config.Config
	executor Executor
	cache    *Cache
	now      func() time.Time
}

// New builds a Scanner. The cache may be nil to disable result reuse.
func New(cfg config.Config, executor Executor, cache *Cache) *Scanner {
	return &Scanner{cfg: cfg, executor: executor, cache: cache, now: time.Now}
}

// Run scans every repository and returns the summary. The results sequence
// preserves the input order regardless of completion order, and a failure on
// one repository never prevents the others from completing: the batch is
// done once every repository has produced exactly one result.
func (s *Scanner) Run(ctx context.Context, repos []source.Repo) types.ScanSummary {
	start := s.now()

	if len(repos) == 0 {
		log.Println("no repositories to scan")
		return types.SummarizeResults(nil, s.now().Sub(start))
	}

	concurrency := s.cfg.Parallel
	if concurrency < 1 {
		concurrency = config.DefaultParallelScans
	}

	type task struct {
		index int
		repo  source.Repo
	}

	tasks := make(chan task)
	results := make([]types.ScanResult, len(repos))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results[t.index] = s.scanOne(ctx, t.repo)
			}
		}()
	}

	for i, r := range repos {
		tasks <- task{index: i, repo: r}
	}
	close(tasks)
	wg.Wait()

	duration := s.now().Sub(start)
	log.Printf("scanned %d repositories in %.1fs", len(repos), duration.Seconds())
	return types.SummarizeResults(results, duration)
}

// scanOne produces exactly one ScanResult, success or failure.
func (s *Scanner) scanOne(ctx context.Context, repo source.Repo) types.ScanResult {
	now := s.now()

	// A repository without workflow files has nothing for the analyzer to
	// inspect: it is clean by construction.
	if !repo.HasWorkflows {
		score := 10.0
		return types.ScanResult{
			RepoName:  repo.FullName,
			RepoURL:   repo.URL,
			Score:     &score,
			RiskLevel: types.RiskLow,
			ScanDate:  now,
			Metadata:  map[string]any{"has_workflows": false},
		}
	}

	checks := s.checkSelection()

	if s.cache != nil {
		if cached, ok := s.cache.Get(repo.FullName, checks); ok {
			log.Printf("using cached result for %s", repo.FullName)
			return cached
		}
	}

	payload, err := s.executor.Run(ctx, repo.FullName, checks)
	if err != nil {
		log.Printf("scan failed for %s: %v", repo.FullName, err)
		return types.NewErrorResult(repo.FullName, repo.URL, now, err)
	}

	result := analyze.Normalize(payload, repo.FullName, repo.URL, now)
	if s.cache != nil && !result.Failed() {
		if err := s.cache.Put(result, checks); err != nil {
			log.Printf("cache write failed for %s: %v", repo.FullName, err)
		}
	}
	return result
}

// checkSelection returns the checks passed to the analyzer; nil means all.
func (s *Scanner) checkSelection() []string {
	if s.cfg.AllChecks() {
		return nil
	}
	return s.cfg.Checks
}
