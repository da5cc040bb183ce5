package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrStoreClosed = errors.New("document store closed")
	ErrCacheMiss   = errors.New("cache miss")
)

type (
	// Tree is a decoded JSON document tree as held by the remote store.
	Tree map[string]interface{}

	// Store is a remote hierarchical document store. Writes overwrite the
	// whole value at a path; there is no read-modify-write merge, so two
	// concurrent writers to the same path race and the last write committed
	// wins.
	Store interface {
		// ReadTree returns the entire document tree.
		ReadTree(ctx context.Context) (Tree, error)
		// Write stores value at the slash-separated path ("" for the root),
		// replacing any existing subtree there.
		Write(ctx context.Context, path string, value interface{}) error
		// Watch emits the full tree after every committed change until the
		// returned stop func is called or ctx is done.
		Watch(ctx context.Context) (<-chan Tree, func(), error)
		Close() error
	}

	// Cache is a local, explicitly-invalidated copy of remote state with a
	// last-synced timestamp. It is never a source of truth on its own.
	Cache interface {
		Put(key string, value interface{}, syncedAt time.Time) error
		Get(key string, dst interface{}) (time.Time, error)
	}
)

// SplitPath splits a slash-separated document path into its segments.
func SplitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func (t Tree) IsEmpty() bool { return len(t) == 0 }

// At returns the value stored at path, if any.
func (t Tree) At(path string) (interface{}, bool) {
	var curr interface{} = map[string]interface{}(t)
	for _, seg := range SplitPath(path) {
		m, ok := curr.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if curr, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return curr, true
}

// Set stores value at path, creating intermediate maps as needed and
// replacing whatever subtree lives there.
func (t Tree) Set(path string, value interface{}) {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return
	}
	curr := map[string]interface{}(t)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := curr[seg].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			curr[seg] = next
		}
		curr = next
	}
	curr[segs[len(segs)-1]] = value
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	cp, err := NormalizeTree(t)
	if err != nil {
		// a Tree always came from JSON; re-encoding it cannot fail
		return Tree{}
	}
	return cp
}

// Normalize converts any JSON-encodable value to plain JSON types
// (map[string]interface{}, []interface{}, float64, string, bool, nil).
func Normalize(value interface{}) (interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Wrap(err, "encoding value")
	}
	var out interface{}
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decoding value")
	}
	return out, nil
}

// NormalizeTree converts any JSON-encodable value to a Tree.
func NormalizeTree(value interface{}) (Tree, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Wrap(err, "encoding tree")
	}
	out := make(Tree)
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decoding tree")
	}
	return out, nil
}
