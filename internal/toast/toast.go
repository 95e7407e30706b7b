// Package toast collects the short user-facing notifications raised by the
// tabs until the client drains them.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

const maxPending = 50

type Toast struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is what the tabs use to raise toasts.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Feed is a bounded queue of toasts. When full, the oldest toast is dropped.
type Feed struct {
	mu      sync.Mutex
	pending []Toast
	now     func() time.Time
}

var _ Notifier = (*Feed)(nil)

func NewFeed() *Feed {
	return &Feed{now: time.Now}
}

func (f *Feed) Success(message string) { f.push(LevelSuccess, message) }
func (f *Feed) Error(message string)   { f.push(LevelError, message) }
func (f *Feed) Info(message string)    { f.push(LevelInfo, message) }

func (f *Feed) push(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = append(f.pending, Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: f.now(),
	})
	if over := len(f.pending) - maxPending; over > 0 {
		f.pending = append([]Toast(nil), f.pending[over:]...)
	}
}

// Drain returns the pending toasts oldest first and empties the feed.
func (f *Feed) Drain() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	if out == nil {
		out = []Toast{}
	}
	return out
}

// Recent returns the pending toasts without removing them.
func (f *Feed) Recent() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Toast{}, f.pending...)
}
