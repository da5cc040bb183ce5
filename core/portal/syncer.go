// Package portal keeps an always-current snapshot of the shared document
// tree and is the single write path to it.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/school"
	"github.com/setulabs/shikshasetu/core/seed"
)

// Syncer states. There is no transition back to StateLoading after the first
// snapshot, and no separate error state: a failed write leaves the syncer
// ready with its optimistic local state.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

const cacheKey = "tree"

// Syncer subscribes to the document store, lazily seeds it when empty and
// exposes the latest decoded snapshot. Writes are applied optimistically to
// the local snapshot; a failed remote write is logged, never surfaced, and
// the local state stands uncorrected until the next change notification.
type Syncer struct {
	store  core.Store
	cache  core.Cache // optional local fallback
	logger core.Logger

	mu    sync.RWMutex
	state State
	tree  core.Tree
	db    school.Database

	stopWatch func()
	done      chan struct{}
}

func NewSyncer(store core.Store, cache core.Cache, logger core.Logger) *Syncer {
	return &Syncer{
		store:  store,
		cache:  cache,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start performs the first read (seeding an empty tree with the fixture set)
// and begins consuming change notifications.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	tree, err := s.store.ReadTree(ctx)
	if err != nil {
		// bootstrap from the local cache when the remote store is unreachable
		tree, err = s.treeFromCache(err)
		if err != nil {
			return errors.Wrap(err, "reading document tree")
		}
	} else if tree.IsEmpty() {
		if tree, err = core.NormalizeTree(seed.Database()); err != nil {
			return errors.Wrap(err, "encoding seed fixtures")
		}
		if err = s.store.Write(ctx, "", tree); err != nil {
			return errors.Wrap(err, "seeding document tree")
		}
	}
	s.apply(tree)

	ch, stop, err := s.store.Watch(ctx)
	if err != nil {
		return errors.Wrap(err, "subscribing to document tree")
	}
	s.stopWatch = stop
	go s.pump(ch)
	return nil
}

func (s *Syncer) treeFromCache(cause error) (core.Tree, error) {
	if s.cache == nil {
		return nil, cause
	}
	var cached core.Tree
	syncedAt, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		return nil, cause
	}
	s.logger.Warn(fmt.Sprintf(
		"document store unreachable (%v); serving cached tree last synced at %s",
		cause, syncedAt.Format(time.RFC3339),
	), cause)
	return cached, nil
}

// Stop releases the store subscription. In-flight writes are not cancelled;
// they complete (or fail silently) against the store regardless.
func (s *Syncer) Stop() {
	if s.stopWatch != nil {
		s.stopWatch()
		<-s.done
	}
}

func (s *Syncer) pump(ch <-chan core.Tree) {
	defer close(s.done)
	// every change notification replaces the snapshot wholesale; there is no
	// partial or delta merge
	for tree := range ch {
		s.apply(tree)
	}
}

func (s *Syncer) apply(tree core.Tree) {
	db, err := decode(tree)
	if err != nil {
		s.logger.Error(fmt.Sprintf("decoding document tree snapshot: %v", err), err)
		return // keep the previous good snapshot
	}

	s.mu.Lock()
	s.tree = tree
	s.db = db
	s.state = StateReady
	s.mu.Unlock()

	s.writeCache(tree)
}

func (s *Syncer) writeCache(tree core.Tree) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(cacheKey, tree, time.Now().UTC()); err != nil {
		s.logger.Warn(fmt.Sprintf("caching document tree: %v", err), err)
	}
}

func (s *Syncer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Syncer) Ready() bool { return s.State() == StateReady }

// Snapshot returns the latest decoded tree. Callers must treat the contained
// slices and maps as read-only and build fresh values for Save.
func (s *Syncer) Snapshot() school.Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Save writes value at the given path: the local snapshot is updated
// optimistically, then the value is written to the store with last-write-wins
// semantics. A store write failure is logged and the optimistic update
// stands; Save only errors when the value itself cannot be encoded.
func (s *Syncer) Save(ctx context.Context, path string, value interface{}) error {
	norm, err := core.Normalize(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.tree == nil {
		s.tree = make(core.Tree)
	}
	tree := s.tree.Clone()
	if path == "" {
		if m, ok := norm.(map[string]interface{}); ok {
			tree = core.Tree(m)
		}
	} else {
		tree.Set(path, norm)
	}
	s.tree = tree
	if db, derr := decode(tree); derr == nil {
		s.db = db
	}
	s.mu.Unlock()

	if err = s.store.Write(ctx, path, norm); err != nil {
		s.logger.Error(fmt.Sprintf("writing %q to document store: %v", path, err), err)
	}
	s.writeCache(tree)
	return nil
}

func decode(tree core.Tree) (school.Database, error) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return school.Database{}, err
	}
	var db school.Database
	if err = json.Unmarshal(raw, &db); err != nil {
		return school.Database{}, err
	}
	return db, nil
}
