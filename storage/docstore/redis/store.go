// Package redisstore backs the document store with Redis: the whole tree is
// kept as one JSON value and change notifications fan out over pub/sub.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/setulabs/shikshasetu/core"
)

const (
	treeKey     = "shikshasetu:tree"
	treeChannel = "shikshasetu:tree:changed"
)

type Store struct {
	client *redis.Client
	logger core.Logger
}

var _ core.Store = (*Store)(nil)

// Open connects to Redis, waiting for it to be ready. Waits 100ms longer
// between each attempt.
func Open(conf *core.Config, logger core.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Store.Redis.Addr,
		Password: conf.Store.Redis.Password,
		DB:       conf.Store.Redis.DB,
	})

	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis ping timeout")
	}
	return &Store{client: client, logger: logger}, nil
}

func (s *Store) ReadTree(ctx context.Context) (core.Tree, error) {
	raw, err := s.client.Get(ctx, treeKey).Bytes()
	if err == redis.Nil {
		return make(core.Tree), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading tree key")
	}
	tree := make(core.Tree)
	if err = json.Unmarshal(raw, &tree); err != nil {
		return nil, errors.Wrap(err, "decoding tree")
	}
	return tree, nil
}

// Write replaces the value at path. The read and the write are not one
// transaction: two concurrent writers race and the last SET committed wins,
// matching the store's whole-value overwrite contract.
func (s *Store) Write(ctx context.Context, path string, value interface{}) error {
	norm, err := core.Normalize(value)
	if err != nil {
		return err
	}

	var tree core.Tree
	if path == "" {
		m, ok := norm.(map[string]interface{})
		if !ok {
			return errors.New("root value must be an object")
		}
		tree = core.Tree(m)
	} else {
		if tree, err = s.ReadTree(ctx); err != nil {
			return err
		}
		tree.Set(path, norm)
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return errors.Wrap(err, "encoding tree")
	}
	if err = s.client.Set(ctx, treeKey, raw, 0).Err(); err != nil {
		return errors.Wrap(err, "writing tree key")
	}
	if err = s.client.Publish(ctx, treeChannel, path).Err(); err != nil {
		return errors.Wrap(err, "publishing change")
	}
	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan core.Tree, func(), error) {
	sub := s.client.Subscribe(ctx, treeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, errors.Wrap(err, "subscribing to change channel")
	}

	out := make(chan core.Tree, 1)
	var once sync.Once
	stop := func() {
		once.Do(func() { _ = sub.Close() })
	}

	go func() {
		defer close(out)
		for range sub.Channel() {
			tree, err := s.ReadTree(ctx)
			if err != nil {
				s.logger.Error(fmt.Sprintf("reading tree after change: %v", err), err)
				continue
			}
			select {
			case out <- tree:
			default:
				select {
				case <-out:
				default:
				}
				select {
				case out <- tree:
				default:
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		stop()
	}()
	return out, stop, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
