package persist

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ownWrites is how many recent saves Watch recognizes as this store's own.
// Events can lag several saves behind, so comparing against only the latest
// write would report an older one as an outside edit.
const ownWrites = 8

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path string

	mu   sync.Mutex
	own  [ownWrites][sha256.Size]byte
	next int
}

// NewFileStore returns a store backed by path. The file and its directory
// are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(_ context.Context) (Snapshot, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("persist: load %s: %w", f.path, err)
	}
	s, err := Import(data)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("persist: load %s: %w", f.path, err)
	}
	return s, true, nil
}

// Save writes through a temp file in the same directory and renames it over
// the target, so readers never see a half-written file.
func (f *FileStore) Save(_ context.Context, s Snapshot) error {
	data, err := encodeIndent(s)
	if err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".workflow-*.json")
	if err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persist: save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}

	// The digest is recorded and the file replaced under one lock, so reload
	// never reads our content before knowing it is ours.
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	f.own[f.next] = sha256.Sum256(data)
	f.next = (f.next + 1) % ownWrites
	return nil
}

func (f *FileStore) isOwn(data []byte) bool {
	sum := sha256.Sum256(data)
	for _, d := range f.own {
		if d == sum {
			return true
		}
	}
	return false
}

func (f *FileStore) Close() error { return nil }

// Watch calls fn with the new snapshot whenever the file is changed by
// someone other than this store. Unparseable content goes to onErr, if set.
// It blocks until ctx is done.
func (f *FileStore) Watch(ctx context.Context, fn func(Snapshot), onErr func(error)) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: watch: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("persist: watch: %w", err)
	}
	defer w.Close()

	// The directory is watched because Save replaces the file by rename.
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("persist: watch %s: %w", dir, err)
	}
	name := filepath.Clean(f.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			f.reload(fn, onErr)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if onErr != nil {
				onErr(err)
			}
		}
	}
}

func (f *FileStore) reload(fn func(Snapshot), onErr func(error)) {
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	own := err == nil && f.isOwn(data)
	f.mu.Unlock()
	if err != nil {
		// Removed; the next event brings the new content.
		return
	}
	if own {
		return
	}
	s, err := Import(data)
	if err != nil {
		if onErr != nil {
			onErr(fmt.Errorf("persist: reload %s: %w", f.path, err))
		}
		return
	}
	fn(s)
}
