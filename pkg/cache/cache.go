// Package cache stores trial outcomes keyed by their parameterization, so a
// sweep never pays twice for the same point.
package cache

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"sweepgo/pkg/core"
)

const defaultTTL = 7 * 24 * time.Hour

type Cache struct {
	Dir string
	TTL time.Duration
}

func New(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".sweepgo", "cache")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{Dir: dir, TTL: ttl}, nil
}

type entry struct {
	Curve    []core.Measurement `json:"curve"`
	CachedAt time.Time          `json:"cached_at"`
	Space    string             `json:"space"`
}

func key(space string, params core.Params) string {
	h := sha256.Sum256([]byte(space + "\x00" + params.Key()))
	return hex.EncodeToString(h[:])
}

func (c *Cache) path(k string) string {
	return filepath.Join(c.Dir, k+".json.gz")
}

// Get returns the cached curve for a parameterization, if fresh.
func (c *Cache) Get(space string, params core.Params) ([]core.Measurement, bool) {
	p := c.path(key(space, params))
	f, err := os.Open(p)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer gz.Close()
	var e entry
	if err := json.NewDecoder(gz).Decode(&e); err != nil {
		return nil, false
	}
	if c.TTL > 0 && time.Since(e.CachedAt) > c.TTL {
		_ = os.Remove(p)
		return nil, false
	}
	return e.Curve, true
}

// Set stores a completed curve. Writes go through a temp file and rename so
// readers never see a partial entry.
func (c *Cache) Set(space string, params core.Params, curve []core.Measurement) error {
	p := c.path(key(space, params))
	e := entry{Curve: curve, CachedAt: time.Now(), Space: space}

	f, err := os.CreateTemp(c.Dir, "tmp-*.json.gz")
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(e); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), p); err != nil {
		os.Remove(f.Name())
		return err
	}
	return nil
}
