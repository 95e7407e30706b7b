package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *mapStore) LoadSnapshot(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data[key]
	return b, ok, nil
}

func (s *mapStore) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string][]byte{}
	}
	s.data[key] = data
	return nil
}

func TestStart_LoadsData(t *testing.T) {
	l := New(func(ctx context.Context) ([]string, error) {
		return []string{"우유", "원두"}, nil
	}, Options{})
	defer l.Close()

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Expected first load to succeed, got %v", err)
	}
	st := l.State()
	if !st.HasData || len(st.Data) != 2 {
		t.Errorf("Expected 2 items, got %+v", st)
	}
	if st.Loading {
		t.Errorf("Expected loading to be cleared")
	}
	if st.Err != nil {
		t.Errorf("Expected no error, got %v", st.Err)
	}
	if st.UpdatedAt.IsZero() {
		t.Errorf("Expected UpdatedAt to be set")
	}
}

func TestLoad_ErrorKeepsPreviousData(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	var reported []error
	l := New(func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 42, nil
		}
		return 0, boom
	}, Options{OnError: func(err error) { reported = append(reported, err) }})
	defer l.Close()

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if err := l.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	st := l.State()
	if st.Data != 42 || !st.HasData {
		t.Errorf("Expected previous data 42 to survive, got %+v", st)
	}
	if !errors.Is(st.Err, boom) {
		t.Errorf("Expected state error boom, got %v", st.Err)
	}
	if len(reported) != 1 {
		t.Errorf("Expected OnError once, got %d", len(reported))
	}

	calls.Store(0)
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if st := l.State(); st.Err != nil {
		t.Errorf("Expected success to clear the error, got %v", st.Err)
	}
}

func TestLoad_StaleResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	l := New(func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release // ignores cancellation on purpose
			return "old", nil
		}
		return "new", nil
	}, Options{})
	defer l.Close()

	firstErr := make(chan error, 1)
	go func() { firstErr <- l.Load(context.Background()) }()
	<-started

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Expected second load to succeed, got %v", err)
	}
	close(release)

	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Expected ErrSuperseded for the older load, got %v", err)
	}
	st := l.State()
	if st.Data != "new" {
		t.Errorf("Expected newest data to win, got %q", st.Data)
	}
	if st.Loading {
		t.Errorf("Expected loading to be cleared by the newest load")
	}
}

func TestLoad_CancelsInflight(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})
	var calls atomic.Int32

	l := New(func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			close(canceled)
			return 0, ctx.Err()
		}
		return 2, nil
	}, Options{OnError: func(err error) { t.Errorf("Expected no OnError for superseded load, got %v", err) }})
	defer l.Close()

	firstErr := make(chan error, 1)
	go func() { firstErr <- l.Load(context.Background()) }()
	<-started

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("Expected in-flight fetch to be canceled")
	}
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Expected ErrSuperseded, got %v", err)
	}
	if st := l.State(); st.Data != 2 || st.Err != nil {
		t.Errorf("Expected data 2 and no error, got %+v", st)
	}
}

func TestLoad_CallerContextCancels(t *testing.T) {
	l := New(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, Options{})
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected canceled fetch, got %v", err)
	}
}

func TestClose_StopsUpdates(t *testing.T) {
	started := make(chan struct{})
	l := New(func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 99, nil
	}, Options{})

	l.Refresh()
	<-started
	l.Close()

	if st := l.State(); st.HasData || st.Loading {
		t.Errorf("Expected no data and no loading after close, got %+v", st)
	}
	if err := l.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := l.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from Start, got %v", err)
	}
	l.Refresh()
	l.Close()
}

func TestAutoRefresh(t *testing.T) {
	var calls atomic.Int32
	l := New(func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	}, Options{AutoRefresh: true, RefreshInterval: 10 * time.Millisecond})

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("Expected at least 3 fetches, got %d", calls.Load())
	}

	l.Close()
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("Expected no fetches after close, got %d more", calls.Load()-after)
	}
}

func TestStart_FallsBackToSnapshot(t *testing.T) {
	store := &mapStore{}
	opts := Options{Snapshots: store, SnapshotKey: "inventory"}

	good := New(func(ctx context.Context) ([]string, error) {
		return []string{"설탕"}, nil
	}, opts)
	if err := good.Start(context.Background()); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	good.Close()

	boom := errors.New("api down")
	bad := New(func(ctx context.Context) ([]string, error) {
		return nil, boom
	}, opts)
	defer bad.Close()

	if err := bad.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Expected start to report the failure, got %v", err)
	}
	st := bad.State()
	if !st.Stale || !st.HasData {
		t.Fatalf("Expected stale snapshot data, got %+v", st)
	}
	if len(st.Data) != 1 || st.Data[0] != "설탕" {
		t.Errorf("Expected snapshot contents, got %v", st.Data)
	}
	if !errors.Is(st.Err, boom) {
		t.Errorf("Expected error to remain visible, got %v", st.Err)
	}
}

func TestLoad_RepeatedWithoutChangeIsIdempotent(t *testing.T) {
	l := New(func(ctx context.Context) ([]string, error) {
		return []string{"우유", "원두"}, nil
	}, Options{})
	defer l.Close()

	var first []string
	for i := 0; i < 2; i++ {
		if err := l.Load(context.Background()); err != nil {
			t.Fatalf("load %d: expected success, got %v", i+1, err)
		}
		st := l.State()
		if st.Err != nil || st.Loading {
			t.Errorf("load %d: expected settled state, got err=%v loading=%v", i+1, st.Err, st.Loading)
		}
		if i == 0 {
			first = st.Data
			continue
		}
		if len(st.Data) != len(first) {
			t.Fatalf("Expected %v, got %v", first, st.Data)
		}
		for j := range first {
			if st.Data[j] != first[j] {
				t.Errorf("Expected %v, got %v", first, st.Data)
				break
			}
		}
	}
}

func TestSaveSnapshot_OlderLoadDoesNotOverwrite(t *testing.T) {
	store := &mapStore{}
	l := New(func(ctx context.Context) ([]string, error) {
		return nil, nil
	}, Options{Snapshots: store, SnapshotKey: "inventory"})
	defer l.Close()

	ctx := context.Background()
	now := time.Now()
	l.saveSnapshot(ctx, 2, snapshot[[]string]{SavedAt: now, Data: []string{"최신"}})
	l.saveSnapshot(ctx, 1, snapshot[[]string]{SavedAt: now.Add(-time.Second), Data: []string{"이전"}})

	fresh := New(func(ctx context.Context) ([]string, error) {
		return nil, errors.New("api down")
	}, Options{Snapshots: store, SnapshotKey: "inventory"})
	defer fresh.Close()
	fresh.Start(ctx)

	if st := fresh.State(); len(st.Data) != 1 || st.Data[0] != "최신" {
		t.Errorf("Expected newest snapshot kept, got %v", st.Data)
	}
}
