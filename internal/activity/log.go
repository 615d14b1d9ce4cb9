// Package activity keeps an append-only JSONL journal of committed canvas
// actions.
package activity

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is one journal line.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	CardID       int       `json:"cardId,omitempty"`
	ConnectionID int       `json:"connectionId,omitempty"`
	Details      string    `json:"details,omitempty"`
}

// Journal appends entries to a file.
type Journal struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// DefaultPath is activity.jsonl in the horizon config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "horizon", "activity.jsonl")
}

// Open returns a journal writing to path. The file is created lazily.
func Open(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

// Path returns the journal file.
func (j *Journal) Path() string { return j.path }

// Record appends an entry stamped with the current time.
func (j *Journal) Record(action string, cardID, connID int, details string) error {
	return j.append(Entry{
		Timestamp:    j.now(),
		Action:       action,
		CardID:       cardID,
		ConnectionID: connID,
		Details:      details,
	})
}

func (j *Journal) append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s\n", data)
	return err
}

// Recent returns up to count entries, newest first. count <= 0 means all.
// Lines that do not parse are skipped.
func (j *Journal) Recent(count int) ([]Entry, error) {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if json.Unmarshal(line, &e) == nil {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Timestamp.After(entries[b].Timestamp)
	})
	if count > 0 && len(entries) > count {
		entries = entries[:count]
	}
	return entries, nil
}

// Search returns entries whose action or details contain query, newest
// first, case-insensitive.
func (j *Journal) Search(query string, count int) ([]Entry, error) {
	all, err := j.Recent(0)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Action), q) || strings.Contains(strings.ToLower(e.Details), q) {
			out = append(out, e)
			if count > 0 && len(out) >= count {
				break
			}
		}
	}
	return out, nil
}

// Clear removes the journal file.
func (j *Journal) Clear() error {
	err := os.Remove(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
