package localstore

import (
	"testing"
	"time"

	"github.com/setulabs/shikshasetu/core"
)

func TestStore_PutGet(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}

	syncedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	value := map[string]interface{}{"students": []interface{}{"S1"}}

	if err = s.Put("tree", value, syncedAt); err != nil {
		t.Fatalf("Put(): %v", err)
	}

	var got map[string]interface{}
	gotSyncedAt, err := s.Get("tree", &got)
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if !gotSyncedAt.Equal(syncedAt) {
		t.Errorf("syncedAt = %v; want %v", gotSyncedAt, syncedAt)
	}
	if _, ok := got["students"]; !ok {
		t.Errorf("got = %+v; want students key", got)
	}
}

func TestStore_PutReplaces(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}

	if err = s.Put("tree", map[string]int{"v": 1}, time.Now()); err != nil {
		t.Fatalf("Put(): %v", err)
	}
	if err = s.Put("tree", map[string]int{"v": 2}, time.Now()); err != nil {
		t.Fatalf("Put(): %v", err)
	}

	var got map[string]int
	if _, err = s.Get("tree", &got); err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if got["v"] != 2 {
		t.Errorf("v = %d; want 2", got["v"])
	}
}

func TestStore_GetMiss(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}

	var got map[string]interface{}
	if _, err = s.Get("nope", &got); err != core.ErrCacheMiss {
		t.Errorf("err = %v; want ErrCacheMiss", err)
	}
}

func TestStore_Invalidate(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}

	if err = s.Put("tree", map[string]int{"v": 1}, time.Now()); err != nil {
		t.Fatalf("Put(): %v", err)
	}
	if err = s.Invalidate("tree"); err != nil {
		t.Fatalf("Invalidate(): %v", err)
	}

	var got map[string]int
	if _, err = s.Get("tree", &got); err != core.ErrCacheMiss {
		t.Errorf("err = %v; want ErrCacheMiss", err)
	}

	// invalidating a missing key is fine
	if err = s.Invalidate("tree"); err != nil {
		t.Errorf("Invalidate(missing): %v", err)
	}
}
