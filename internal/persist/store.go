package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps the latest snapshot of a canvas.
type Store interface {
	// Load returns the stored snapshot. ok is false when nothing was saved yet.
	Load(ctx context.Context) (s Snapshot, ok bool, err error)
	Save(ctx context.Context, s Snapshot) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a store backend.
type Options struct {
	Backend  string
	Path     string
	RedisURL string
	Name     string
}

// DataDir returns the directory horizon keeps its files in.
func DataDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "horizon")
}

// Open builds the store named by opts.Backend. An empty backend means file.
func Open(opts Options) (Store, error) {
	if opts.Name == "" {
		opts.Name = "default"
	}
	switch opts.Backend {
	case "", BackendFile:
		path := opts.Path
		if path == "" {
			path = filepath.Join(DataDir(), "workflow.json")
		}
		return NewFileStore(path), nil
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			path = filepath.Join(DataDir(), "horizon.db")
		}
		return NewSQLiteStore(path, opts.Name)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("persist: redis backend needs storage.redis_url or HORIZON_REDIS_URL")
		}
		return NewRedisStore(opts.RedisURL, opts.Name)
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("persist: unknown storage backend %q", opts.Backend)
}

// MemoryStore keeps the encoded snapshot in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(_ context.Context) (Snapshot, bool, error) {
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()
	if data == nil {
		return Snapshot{}, false, nil
	}
	s, err := Import(data)
	if err != nil {
		return Snapshot{}, false, err
	}
	return s, true, nil
}

func (m *MemoryStore) Save(_ context.Context, s Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
