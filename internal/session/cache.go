package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	sessionFile = "session.json"
	tokenFile   = "token"
)

// Cache is the durable local store for the session user and bearer token:
// two small files under the state directory, written 0600 and replaced
// atomically. It satisfies the api client's TokenSource and SessionEvictor.
type Cache struct {
	mu  sync.Mutex
	dir string
}

// NewCache creates a cache rooted at dir. The directory must already exist.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the state directory backing the cache.
func (c *Cache) Dir() string { return c.dir }

// SessionPath returns the absolute path of the session cache file.
func (c *Cache) SessionPath() string {
	return filepath.Join(c.dir, sessionFile)
}

// Load reads the cached session user. Returns (nil, nil) when absent.
func (c *Cache) Load() (*User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.SessionPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("corrupt session cache: %w", err)
	}
	return &u, nil
}

// Save writes the session user to the cache file.
func (c *Cache) Save(u *User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.writeFile(c.SessionPath(), raw)
}

// Evict removes the cached session. Removing an absent entry is not an error.
func (c *Cache) Evict() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.SessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to evict session cache: %w", err)
	}
	return nil
}

// EvictSession implements the api client's eviction hook.
func (c *Cache) EvictSession() error { return c.Evict() }

// Token returns the persisted bearer token, if any.
func (c *Cache) Token() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(c.dir, tokenFile))
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(raw))
	return token, token != ""
}

// SaveToken persists the bearer token.
func (c *Cache) SaveToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeFile(filepath.Join(c.dir, tokenFile), []byte(token))
}

// EvictToken removes the persisted bearer token.
func (c *Cache) EvictToken() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(filepath.Join(c.dir, tokenFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to evict token: %w", err)
	}
	return nil
}

// writeFile writes via a temp file and rename so readers never observe a
// partially written entry.
func (c *Cache) writeFile(path string, raw []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
