// Package localstore is the local persistence fallback: a file-backed cache
// of remote state with an explicit last-synced timestamp. It is written after
// every snapshot and read only to bootstrap when the remote store is
// unreachable; it is never a source of truth on its own.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
)

type Store struct {
	dir string
}

var _ core.Cache = (*Store)(nil)

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	return &Store{dir: dir}, nil
}

type envelope struct {
	SyncedAt time.Time       `json:"synced_at"`
	Data     json.RawMessage `json:"data"`
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Put writes the value under key, replacing any previous copy atomically.
func (s *Store) Put(key string, value interface{}, syncedAt time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding cached value")
	}
	raw, err := json.Marshal(envelope{SyncedAt: syncedAt, Data: data})
	if err != nil {
		return errors.Wrap(err, "encoding cache envelope")
	}

	tmp := s.path(key) + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrap(err, "writing cache file")
	}
	return errors.Wrap(os.Rename(tmp, s.path(key)), "replacing cache file")
}

// Get reads the value under key into dst and reports when it was last
// synced. A missing key yields core.ErrCacheMiss.
func (s *Store) Get(key string, dst interface{}) (time.Time, error) {
	raw, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return time.Time{}, core.ErrCacheMiss
	}
	if err != nil {
		return time.Time{}, errors.Wrap(err, "reading cache file")
	}

	var env envelope
	if err = json.Unmarshal(raw, &env); err != nil {
		return time.Time{}, errors.Wrap(err, "decoding cache envelope")
	}
	if err = json.Unmarshal(env.Data, dst); err != nil {
		return time.Time{}, errors.Wrap(err, "decoding cached value")
	}
	return env.SyncedAt, nil
}

// Invalidate drops the cached copy under key.
func (s *Store) Invalidate(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "removing cache file")
}
