package portal

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/school"
	inmemstore "github.com/setulabs/shikshasetu/storage/docstore/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// stubStore reads a fixed tree and can be told to fail reads or writes.
type stubStore struct {
	tree     core.Tree
	readErr  error
	writeErr error
	writes   int
}

func (s *stubStore) ReadTree(ctx context.Context) (core.Tree, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.tree.Clone(), nil
}

func (s *stubStore) Write(ctx context.Context, path string, value interface{}) error {
	s.writes++
	return s.writeErr
}

func (s *stubStore) Watch(ctx context.Context) (<-chan core.Tree, func(), error) {
	ch := make(chan core.Tree)
	var stopped bool
	return ch, func() {
		if !stopped {
			stopped = true
			close(ch)
		}
	}, nil
}

func (s *stubStore) Close() error { return nil }

// memCache is an in-memory core.Cache.
type memCache struct {
	data     map[string]core.Tree
	syncedAt time.Time
}

func (c *memCache) Put(key string, value interface{}, syncedAt time.Time) error {
	tree, ok := value.(core.Tree)
	if !ok {
		return errors.New("unexpected value")
	}
	if c.data == nil {
		c.data = make(map[string]core.Tree)
	}
	c.data[key] = tree.Clone()
	c.syncedAt = syncedAt
	return nil
}

func (c *memCache) Get(key string, dst interface{}) (time.Time, error) {
	tree, ok := c.data[key]
	if !ok {
		return time.Time{}, core.ErrCacheMiss
	}
	*(dst.(*core.Tree)) = tree.Clone()
	return c.syncedAt, nil
}

func startSyncer(t *testing.T, store core.Store, cache core.Cache) *Syncer {
	t.Helper()
	s := NewSyncer(store, cache, nopLogger{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start(): %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestSyncer_seedsEmptyStore(t *testing.T) {
	store := inmemstore.Open()
	defer store.Close()

	s := startSyncer(t, store, nil)

	if s.State() != StateReady {
		t.Fatalf("state = %v; want ready", s.State())
	}
	db := s.Snapshot()
	if len(db.Students) == 0 || len(db.Users) == 0 {
		t.Error("snapshot not seeded")
	}

	// fixtures landed in the store, not just locally
	tree, err := store.ReadTree(context.Background())
	if err != nil {
		t.Fatalf("ReadTree(): %v", err)
	}
	if tree.IsEmpty() {
		t.Error("store not seeded")
	}
}

func TestSyncer_watchReplacesSnapshotWholesale(t *testing.T) {
	store := inmemstore.Open()
	defer store.Close()

	s := startSyncer(t, store, nil)

	// an external writer replaces the students collection
	err := store.Write(context.Background(), school.PathStudents, []school.Student{
		{ID: "STU-9999", Name: "New Kid", Grade: "8", Medium: "English"},
	})
	if err != nil {
		t.Fatalf("Write(): %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		db := s.Snapshot()
		if len(db.Students) == 1 && db.Students[0].ID == "STU-9999" {
			if len(db.Teachers) == 0 {
				t.Error("unrelated collections dropped from the snapshot")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("snapshot never updated; students = %+v", db.Students)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSyncer_saveIsOptimistic(t *testing.T) {
	seedTree, err := core.NormalizeTree(map[string]interface{}{
		"students": []school.Student{{ID: "S1", Name: "A", Grade: "10", Medium: "English"}},
	})
	if err != nil {
		t.Fatalf("NormalizeTree(): %v", err)
	}
	store := &stubStore{tree: seedTree, writeErr: errors.New("store down")}

	s := startSyncer(t, store, nil)
	writesBefore := store.writes

	// the failed remote write is logged, not surfaced
	err = s.Save(context.Background(), school.PathStudents, []school.Student{
		{ID: "S1", Name: "A", Grade: "10", Medium: "English"},
		{ID: "S2", Name: "B", Grade: "10", Medium: "English"},
	})
	if err != nil {
		t.Fatalf("Save(): %v", err)
	}
	if store.writes != writesBefore+1 {
		t.Errorf("writes = %d; want %d", store.writes, writesBefore+1)
	}

	// the optimistic local state stands
	if got := len(s.Snapshot().Students); got != 2 {
		t.Errorf("len(students) = %d; want 2", got)
	}
	if s.State() != StateReady {
		t.Errorf("state = %v; want ready", s.State())
	}
}

func TestSyncer_bootstrapsFromCacheWhenStoreUnreachable(t *testing.T) {
	seedTree, err := core.NormalizeTree(map[string]interface{}{
		"students": []school.Student{{ID: "S1", Name: "A", Grade: "10", Medium: "English"}},
	})
	if err != nil {
		t.Fatalf("NormalizeTree(): %v", err)
	}

	cache := &memCache{}
	if err = cache.Put(cacheKey, seedTree, time.Now()); err != nil {
		t.Fatalf("cache.Put(): %v", err)
	}

	store := &stubStore{readErr: errors.New("store unreachable")}
	s := startSyncer(t, store, cache)

	if s.State() != StateReady {
		t.Fatalf("state = %v; want ready", s.State())
	}
	if got := len(s.Snapshot().Students); got != 1 {
		t.Errorf("len(students) = %d; want 1", got)
	}
}

func TestSyncer_startFailsWithoutStoreOrCache(t *testing.T) {
	store := &stubStore{readErr: errors.New("store unreachable")}
	s := NewSyncer(store, nil, nopLogger{})
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected Start() to fail")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateLoading, "loading"},
		{StateReady, "ready"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q; want %q", got, tt.want)
		}
	}
}
