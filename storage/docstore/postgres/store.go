// Package pgstore backs the document store with Postgres: the whole tree is
// one jsonb row and change notifications ride on LISTEN/NOTIFY.
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
)

const (
	notifyChannel = "shikshasetu_tree"

	bootstrapSchema = `
CREATE TABLE IF NOT EXISTS document_tree (
	id  int PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	doc jsonb NOT NULL DEFAULT '{}'::jsonb
);
INSERT INTO document_tree (id) VALUES (1) ON CONFLICT (id) DO NOTHING;`
)

type Store struct {
	db      *sqlx.DB
	connURL string
	logger  core.Logger
}

var _ core.Store = (*Store)(nil)

func connURL(dbName string, admin bool, conf *core.Config) string {
	user := url.UserPassword(conf.Store.Database.User, conf.Store.Database.Password)
	if admin && conf.Store.Database.AdminUser != "" {
		user = url.UserPassword(conf.Store.Database.AdminUser, conf.Store.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Store.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Store.Database.Engine,
		User:     user,
		Host:     conf.DatabaseAddress(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the database, waiting for it to be ready, and bootstraps
// the single-row tree table.
func Open(conf *core.Config, logger core.Logger) (*Store, error) {
	u := connURL(conf.Store.Database.Name, false, conf)
	db, err := sqlx.Open(conf.Store.Database.Engine, u)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err = db.Exec(bootstrapSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "bootstrapping schema")
	}
	return &Store{db: db, connURL: u, logger: logger}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func (s *Store) ReadTree(ctx context.Context) (core.Tree, error) {
	var raw []byte
	if err := s.db.GetContext(ctx, &raw, `SELECT doc FROM document_tree WHERE id = 1`); err != nil {
		return nil, errors.Wrap(err, "reading tree row")
	}
	tree := make(core.Tree)
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, errors.Wrap(err, "decoding tree")
	}
	return tree, nil
}

// Write replaces the value at path. The store contract is whole-value
// overwrite with last-write-wins, so read and write stay separate statements.
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
	if _, err = s.db.ExecContext(ctx, `UPDATE document_tree SET doc = $1 WHERE id = 1`, raw); err != nil {
		return errors.Wrap(err, "writing tree row")
	}
	if _, err = s.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, path); err != nil {
		return errors.Wrap(err, "notifying change")
	}
	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan core.Tree, func(), error) {
	listener := pq.NewListener(s.connURL, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.logger.Warn(fmt.Sprintf("tree listener event %d: %v", ev, err), err)
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		_ = listener.Close()
		return nil, nil, errors.Wrap(err, "listening on change channel")
	}

	out := make(chan core.Tree, 1)
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = listener.Close()
		})
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				stop()
				return
			case n := <-listener.Notify:
				if n == nil { // reconnect; state may have changed meanwhile
					continue
				}
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
		}
	}()
	return out, stop, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
