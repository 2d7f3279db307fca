package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"actions-auditor/types"
)

// Cache stores recent successful scan results on disk so repeated runs skip
// repositories scanned within the TTL. Keys cover the repository and the
// exact check selection; changing the selection misses the cache.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type cacheEnvelope struct {
	CachedAt time.Time        `json:"cached_at"`
	Result   types.ScanResult `json:"result"`
}

// NewCache creates the cache directory if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Keep cached payloads out of version control.
	gitignore := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		_ = os.WriteFile(gitignore, []byte("*\n!.gitignore\n"), 0o644)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Get returns a fresh cached result, if one exists. Expired entries are
// removed on the way out.
func (c *Cache) Get(repoName string, checks []string) (types.ScanResult, bool) {
	path := c.path(repoName, checks)

	raw, err := os.ReadFile(path)
	if err != nil {
		return types.ScanResult{}, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		_ = os.Remove(path)
		return types.ScanResult{}, false
	}

	if c.now().Sub(env.CachedAt) > c.ttl {
		_ = os.Remove(path)
		return types.ScanResult{}, false
	}
	return env.Result, true
}

// Put stores a successful result. Failed results are never cached, so a
// transient analyzer failure cannot mask a later good scan.
func (c *Cache) Put(result types.ScanResult, checks []string) error {
	if result.Failed() {
		return nil
	}
	raw, err := json.Marshal(cacheEnvelope{CachedAt: c.now(), Result: result})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(result.RepoName, checks), raw, 0o644)
}

func (c *Cache) path(repoName string, checks []string) string {
	sorted := append([]string(nil), checks...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(repoName + ":" + strings.Join(sorted, ",")))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:8])+".json")
}
