package session

import (
	"context"
	"sync"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows short user-facing notices.
type Notifier interface {
	Notify(level Level, message string)
}

// Prompt is the text of a confirmation request.
type Prompt struct {
	Title   string
	Message string
}

// Confirmer asks the user to approve a destructive action. A refusal is
// (false, nil); an error means the question could not be asked.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// Always answers every prompt with the same value.
type Always bool

func (a Always) Confirm(context.Context, Prompt) (bool, error) { return bool(a), nil }

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

// Notice is one recorded notification.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Recorder keeps notices until drained.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	r.notices = append(r.notices, Notice{Level: level, Message: message})
	r.mu.Unlock()
}

// Drain returns and forgets the recorded notices.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

type discard struct{}

func (discard) Notify(Level, string) {}
