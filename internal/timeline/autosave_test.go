package timeline

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeRepo struct {
	saves []*Timeline
	err   error
}

func (f *fakeRepo) Get(ctx context.Context, projectID string) (*Timeline, error) { return nil, nil }
func (f *fakeRepo) Delete(ctx context.Context, projectID string) error           { return nil }
func (f *fakeRepo) Save(ctx context.Context, tl *Timeline) error {
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, tl)
	return nil
}

func TestAutosaver_FlushSavesDirtyState(t *testing.T) {
	store := NewStore(New("p"), nil)
	repo := &fakeRepo{}
	saver := NewAutosaver(store, repo, nil, 0, nil)

	saver.Flush(context.Background())
	if len(repo.saves) != 1 {
		t.Fatalf("saves = %d, want 1 (initial state is unsaved)", len(repo.saves))
	}

	// Unchanged state: no second save.
	saver.Flush(context.Background())
	if len(repo.saves) != 1 {
		t.Errorf("saves = %d, want 1 after clean flush", len(repo.saves))
	}

	store.Apply(func(e *Engine) { e.AddTextClip("dirty", nil, 2, 0) })
	saver.Flush(context.Background())
	if len(repo.saves) != 2 {
		t.Errorf("saves = %d, want 2 after mutation", len(repo.saves))
	}
}

func TestAutosaver_SaveFailureRetriesNextFlush(t *testing.T) {
	store := NewStore(New("p"), nil)
	repo := &fakeRepo{err: context.DeadlineExceeded}
	saver := NewAutosaver(store, repo, nil, 0, nil)

	saver.Flush(context.Background())
	if len(repo.saves) != 0 {
		t.Fatalf("saves = %d, want 0 while repo fails", len(repo.saves))
	}

	// In-memory state is never rolled back; once the repo recovers the
	// same state saves cleanly.
	repo.err = nil
	saver.Flush(context.Background())
	if len(repo.saves) != 1 {
		t.Errorf("saves = %d, want 1 after recovery", len(repo.saves))
	}
}

type lockedRepo struct {
	mu    sync.Mutex
	saves int
}

func (l *lockedRepo) Get(ctx context.Context, projectID string) (*Timeline, error) { return nil, nil }
func (l *lockedRepo) Delete(ctx context.Context, projectID string) error           { return nil }
func (l *lockedRepo) Save(ctx context.Context, tl *Timeline) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saves++
	return nil
}

func (l *lockedRepo) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saves
}

// Flush arrives from request handlers while Run ticks on its own goroutine;
// both hit the same dirty-check state and must serialize.
func TestAutosaver_ConcurrentFlushAndRun(t *testing.T) {
	store := NewStore(New("p"), nil)
	repo := &lockedRepo{}
	saver := NewAutosaver(store, repo, nil, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		saver.Run(ctx)
		close(done)
	}()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				store.Apply(func(e *Engine) { e.AddTextClip("edit", nil, 1, float64(j)) })
				saver.Flush(context.Background())
			}
		}()
	}
	wg.Wait()
	cancel()
	<-done

	if repo.count() == 0 {
		t.Fatal("no saves recorded under concurrent flushes")
	}

	// Everything flushed; a final clean flush is a no-op.
	before := repo.count()
	saver.Flush(context.Background())
	if repo.count() != before {
		t.Errorf("saves = %d, want %d after clean flush", repo.count(), before)
	}
}

type fakeCapturer struct {
	captured int
}

func (f *fakeCapturer) Capture(projectID string, tl *Timeline) (string, error) {
	f.captured++
	return "rev-1", nil
}

func TestAutosaver_CapturesRevisionOnSave(t *testing.T) {
	store := NewStore(New("p"), nil)
	repo := &fakeRepo{}
	cap := &fakeCapturer{}
	saver := NewAutosaver(store, repo, cap, 0, nil)

	saver.Flush(context.Background())
	saver.Flush(context.Background()) // clean, no capture

	if cap.captured != 1 {
		t.Errorf("captures = %d, want 1", cap.captured)
	}
}
