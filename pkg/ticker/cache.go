package ticker

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantview/tickersheet/config"
)

// pageCache stores fetched response bodies on disk so repeated lookups for
// the same symbol do not hammer the upstream. It is a plain I/O shim: the
// normalization pipeline never knows whether a body came from the network.
type pageCache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

func newPageCache(cfg *config.Config) *pageCache {
	return &pageCache{
		dir:     filepath.Join(cfg.DataCacheDir, "pages"),
		ttl:     time.Duration(cfg.CacheTTLHours) * time.Hour,
		enabled: cfg.CacheEnabled,
	}
}

func (pc *pageCache) key(url string, params map[string]string) string {
	payload, _ := json.Marshal(struct {
		URL    string            `json:"url"`
		Params map[string]string `json:"params"`
	}{url, params})
	return fmt.Sprintf("%x.body", md5.Sum(payload))
}

func (pc *pageCache) get(url string, params map[string]string) (string, bool) {
	if !pc.enabled {
		return "", false
	}

	path := filepath.Join(pc.dir, pc.key(url, params))
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if time.Since(info.ModTime()) > pc.ttl {
		os.Remove(path)
		return "", false
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(body), true
}

func (pc *pageCache) put(url string, params map[string]string, body string) {
	if !pc.enabled {
		return
	}
	if err := os.MkdirAll(pc.dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(pc.dir, pc.key(url, params)), []byte(body), 0o644)
}
