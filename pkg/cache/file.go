package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores converted interchange documents as JSON files under a
// directory, one file per document key. It backs CLI runs, where the
// cache lives in the user's XDG cache dir and survives across
// invocations so re-running the same edge list skips the clustering
// subprocess.
type FileCache struct {
	dir string
}

// NewFileCache creates a document cache rooted at dir.
// The directory is created if it doesn't exist.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// documentEntry is the on-disk envelope around a cached document. The
// expiry is stored alongside the bytes so stale entries can be pruned
// lazily on the next read; there is no background sweeper.
type documentEntry struct {
	Document  []byte    `json:"document"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Get retrieves a cached document. Corrupt and expired entries are
// removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.entryPath(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry documentEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Document, true, nil
}

// Set stores a document. A zero ttl stores it without expiry; the
// pipeline passes TTLDocument, which only bounds disk growth since
// conversion is deterministic.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := documentEntry{
		Document: data,
	}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	return os.WriteFile(path, entryData, 0600)
}

// Delete removes a cached document. Deleting a missing key is not an
// error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// entryPath maps a document key to its file, sharding by the first two
// hash characters so one directory never accumulates every entry.
func (c *FileCache) entryPath(key string) string {
	sum := Hash([]byte(key))
	return filepath.Join(c.dir, sum[:2], sum[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
