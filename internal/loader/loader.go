// Package loader keeps a piece of remote data fresh for one dashboard tab.
//
// A Loader runs its fetch function on Start, on demand via Refresh or Load,
// and optionally on a fixed interval. Only the most recently started load is
// allowed to write state: starting a new load cancels the one in flight, and
// a superseded result is dropped even if it arrives later. After Close no
// further state updates happen.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"bizup-dashboard/internal/logger"
)

const (
	DefaultRefreshInterval = 30 * time.Second
	snapshotTimeout        = 2 * time.Second
)

var (
	ErrClosed     = errors.New("loader closed")
	ErrSuperseded = errors.New("load superseded by a newer request")
)

// FetchFunc produces a fresh copy of the data. It must honour ctx.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// SnapshotStore persists the last good payload so a tab can show stale
// data when the API is down at startup.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, key string) ([]byte, bool, error)
	SaveSnapshot(ctx context.Context, key string, data []byte) error
}

type Options struct {
	AutoRefresh     bool
	RefreshInterval time.Duration
	// Timeout bounds a single fetch. Zero means no extra bound.
	Timeout time.Duration
	// OnError is called once per failed load that was not superseded.
	OnError func(error)

	Snapshots   SnapshotStore
	SnapshotKey string

	Logger *logger.Logger
}

// State is a consistent copy of the loader's view of the data.
type State[T any] struct {
	Data      T
	HasData   bool
	Loading   bool
	Err       error
	UpdatedAt time.Time
	// Stale is set while Data comes from a snapshot rather than a live fetch.
	Stale bool
}

type Loader[T any] struct {
	fetch FetchFunc[T]
	opts  Options
	log   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State[T]
	seq      uint64
	inflight context.CancelFunc
	started  bool
	closed   bool

	// saveMu orders snapshot writes; savedSeq is the newest load written.
	saveMu   sync.Mutex
	savedSeq uint64
}

type snapshot[T any] struct {
	SavedAt time.Time `json:"saved_at"`
	Data    T         `json:"data"`
}

func New[T any](fetch FetchFunc[T], opts Options) *Loader[T] {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader[T]{
		fetch:  fetch,
		opts:   opts,
		log:    log.WithComponent("loader"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start performs the initial load and, when auto-refresh is on, starts the
// refresh ticker. The first load runs synchronously so the caller sees a
// settled state. If it fails and a snapshot exists, the snapshot is shown
// with Stale set. The returned error is the first load's error, which has
// already been reported through OnError.
func (l *Loader[T]) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	first := !l.started
	l.started = true
	l.mu.Unlock()

	err := l.Load(ctx)
	if err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
		l.restoreSnapshot(ctx)
	}

	if first && l.opts.AutoRefresh {
		l.mu.Lock()
		if !l.closed {
			l.wg.Add(1)
			go l.tick()
		}
		l.mu.Unlock()
	}
	return err
}

// Refresh starts a load in the background and returns immediately.
func (l *Loader[T]) Refresh() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		_ = l.Load(l.ctx)
	}()
}

// Load fetches synchronously. It cancels any load already in flight. If a
// newer load starts before this one finishes, the result is discarded and
// ErrSuperseded is returned.
func (l *Loader[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.inflight != nil {
		l.inflight()
	}
	l.seq++
	seq := l.seq
	loadCtx, cancel := context.WithCancel(l.ctx)
	l.inflight = cancel
	l.state.Loading = true
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	defer cancel()

	if l.opts.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		loadCtx, cancelTimeout = context.WithTimeout(loadCtx, l.opts.Timeout)
		defer cancelTimeout()
	}

	data, err := l.fetch(loadCtx)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if seq != l.seq {
		l.mu.Unlock()
		return ErrSuperseded
	}
	l.inflight = nil
	l.state.Loading = false

	if err != nil {
		l.state.Err = err
		onError := l.opts.OnError
		l.mu.Unlock()

		l.log.WithRequestID(ctx).Warn("load failed", "key", l.opts.SnapshotKey, "error", err)
		if onError != nil {
			onError(err)
		}
		return err
	}

	now := time.Now()
	l.state.Data = data
	l.state.HasData = true
	l.state.Err = nil
	l.state.UpdatedAt = now
	l.state.Stale = false
	l.mu.Unlock()

	l.saveSnapshot(ctx, seq, snapshot[T]{SavedAt: now, Data: data})
	return nil
}

func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close stops the ticker, cancels any load in flight and waits for
// background work to finish. It is safe to call more than once.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	if l.inflight != nil {
		l.inflight()
		l.inflight = nil
	}
	l.state.Loading = false
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
}

func (l *Loader[T]) tick() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			_ = l.Load(l.ctx)
		}
	}
}

// saveSnapshot writes the result of load seq unless a newer load has
// already been written.
func (l *Loader[T]) saveSnapshot(ctx context.Context, seq uint64, snap snapshot[T]) {
	if l.opts.Snapshots == nil || l.opts.SnapshotKey == "" {
		return
	}
	l.saveMu.Lock()
	defer l.saveMu.Unlock()
	if seq < l.savedSeq {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		l.log.Warn("encode snapshot", "key", l.opts.SnapshotKey, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
	defer cancel()
	if err := l.opts.Snapshots.SaveSnapshot(ctx, l.opts.SnapshotKey, data); err != nil {
		l.log.Warn("save snapshot", "key", l.opts.SnapshotKey, "error", err)
		return
	}
	l.savedSeq = seq
}

func (l *Loader[T]) restoreSnapshot(ctx context.Context) {
	if l.opts.Snapshots == nil || l.opts.SnapshotKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
	defer cancel()

	raw, ok, err := l.opts.Snapshots.LoadSnapshot(ctx, l.opts.SnapshotKey)
	if err != nil {
		l.log.Warn("load snapshot", "key", l.opts.SnapshotKey, "error", err)
		return
	}
	if !ok {
		return
	}
	var snap snapshot[T]
	if err := json.Unmarshal(raw, &snap); err != nil {
		l.log.Warn("decode snapshot", "key", l.opts.SnapshotKey, "error", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.state.HasData {
		return
	}
	l.state.Data = snap.Data
	l.state.HasData = true
	l.state.UpdatedAt = snap.SavedAt
	l.state.Stale = true
}
