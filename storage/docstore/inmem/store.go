// Package inmemstore provides an in-process document store used in DEV mode
// and by the test suites.
package inmemstore

import (
	"context"
	"sync"

	"github.com/setulabs/shikshasetu/core"
)

type Store struct {
	mu      sync.RWMutex
	tree    core.Tree
	subs    map[int]chan core.Tree
	nextSub int
	closed  bool
}

var _ core.Store = (*Store)(nil)

func Open() *Store {
	return &Store{
		tree: make(core.Tree),
		subs: make(map[int]chan core.Tree),
	}
}

func (s *Store) ReadTree(ctx context.Context) (core.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrStoreClosed
	}
	return s.tree.Clone(), nil
}

func (s *Store) Write(ctx context.Context, path string, value interface{}) error {
	norm, err := core.Normalize(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrStoreClosed
	}
	if path == "" {
		if m, ok := norm.(map[string]interface{}); ok {
			s.tree = core.Tree(m)
		} else {
			s.tree = make(core.Tree)
		}
	} else {
		s.tree.Set(path, norm)
	}

	// fan out; drop a stale pending snapshot rather than block the writer
	snapshot := s.tree.Clone()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan core.Tree, func(), error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, core.ErrStoreClosed
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan core.Tree, 1)
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
			s.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()
	return ch, stop, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	return nil
}
