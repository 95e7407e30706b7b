// Package dashboard is the tab navigation shell. Exactly one tab instance
// is mounted at a time; activating another tab closes it first.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/toast"
)

type TabID string

const (
	TabInventory  TabID = "inventory"
	TabMenu       TabID = "menu"
	TabOrder      TabID = "order"
	TabOutOfStock TabID = "outofstock"
	TabSettings   TabID = "settings"

	DefaultTab = TabInventory
)

// Tabs lists the tabs in navigation order.
var Tabs = []TabID{TabInventory, TabMenu, TabOrder, TabOutOfStock, TabSettings}

func (id TabID) Label() string {
	switch id {
	case TabInventory:
		return "재고 관리"
	case TabMenu:
		return "메뉴 관리"
	case TabOrder:
		return "발주 추천"
	case TabOutOfStock:
		return "품절 관리"
	case TabSettings:
		return "설정"
	default:
		return string(id)
	}
}

var (
	ErrNotActive  = errors.New("tab is not active")
	ErrUnknownTab = errors.New("unknown tab")
)

// Tab is a mounted tab instance. Open runs the first loads; Close stops
// its timers and cancels anything in flight. Close may be called while
// Open is still running.
type Tab interface {
	Open(ctx context.Context) error
	Close()
}

type Factory func() Tab

type Shell struct {
	log   *logger.Logger
	feed  *toast.Feed
	mu    sync.Mutex
	tabs  map[TabID]Factory
	id    TabID
	mount Tab
}

func NewShell(feed *toast.Feed, log *logger.Logger) *Shell {
	if log == nil {
		log = logger.Nop()
	}
	if feed == nil {
		feed = toast.NewFeed()
	}
	return &Shell{
		log:  log.WithComponent("shell"),
		feed: feed,
		tabs: map[TabID]Factory{},
	}
}

func (s *Shell) Register(id TabID, factory Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[id] = factory
}

func (s *Shell) Toasts() *toast.Feed {
	return s.feed
}

// Active returns the active tab id, or "" before the first activation.
func (s *Shell) Active() TabID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Activate mounts a fresh instance of id, closing the current one.
// Activating the tab that is already active keeps the mounted instance.
func (s *Shell) Activate(ctx context.Context, id TabID) error {
	s.mu.Lock()
	factory, ok := s.tabs[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownTab, id)
	}
	if s.id == id && s.mount != nil {
		s.mu.Unlock()
		return nil
	}
	prev := s.mount
	tab := factory()
	s.id = id
	s.mount = tab
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	s.log.WithRequestID(ctx).Info("tab activated", "tab", id)
	if err := tab.Open(ctx); err != nil {
		s.log.WithRequestID(ctx).Warn("tab opened with errors", "tab", id, "error", err)
	}
	return nil
}

// Close unmounts the active tab. Used on shutdown.
func (s *Shell) Close() {
	s.mu.Lock()
	tab := s.mount
	s.mount = nil
	s.id = ""
	s.mu.Unlock()

	if tab != nil {
		tab.Close()
	}
}

// Lookup returns the mounted instance of id, or ErrNotActive when another
// tab is active.
func Lookup[T Tab](s *Shell, id TabID) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != id || s.mount == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotActive, id)
	}
	tab, ok := s.mount.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s has type %T", ErrNotActive, id, s.mount)
	}
	return tab, nil
}
