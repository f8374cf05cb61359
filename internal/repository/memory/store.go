// Package memory implements every repository on in-process maps.
//
// All operations serialize on one mutex. ExecTx holds that mutex for the whole
// transaction and restores a snapshot when fn fails, so a transaction is
// serializable and atomic. Constraints the postgres schema enforces (unique keys,
// foreign keys, cascades, the single default branch) are enforced here too.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"arbor/internal/domain/models/social"
	"arbor/internal/domain/repositories"

	"github.com/google/uuid"
)

type record[T any] struct {
	v   T
	seq int64
}

type dataset struct {
	users        map[string]record[social.User]
	follows      map[string]record[social.Follow]
	projects     map[string]record[social.Project]
	branches     map[string]record[social.Branch]
	posts        map[string]record[social.Post]
	media        map[string]record[social.PostMedia]
	permissions  map[string]record[social.Permissions]
	interactions map[string]record[social.Interaction]
	seq          int64
}

func newDataset() *dataset {
	return &dataset{
		users:        map[string]record[social.User]{},
		follows:      map[string]record[social.Follow]{},
		projects:     map[string]record[social.Project]{},
		branches:     map[string]record[social.Branch]{},
		posts:        map[string]record[social.Post]{},
		media:        map[string]record[social.PostMedia]{},
		permissions:  map[string]record[social.Permissions]{},
		interactions: map[string]record[social.Interaction]{},
	}
}

// clone copies the maps; values are plain structs except Permissions.AllowedUsers,
// which is never mutated in place.
func (d *dataset) clone() *dataset {
	return &dataset{
		users:        maps.Clone(d.users),
		follows:      maps.Clone(d.follows),
		projects:     maps.Clone(d.projects),
		branches:     maps.Clone(d.branches),
		posts:        maps.Clone(d.posts),
		media:        maps.Clone(d.media),
		permissions:  maps.Clone(d.permissions),
		interactions: maps.Clone(d.interactions),
		seq:          d.seq,
	}
}

func (d *dataset) next() int64 {
	d.seq++
	return d.seq
}

// Store owns the data shared by all memory repositories
type Store struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: newDataset(), now: time.Now}
}

type txKey struct{}

// inTx reports whether ctx belongs to a transaction of this store
func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock acquires the store mutex unless ctx already holds it through ExecTx
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Reset drops all data
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = newDataset()
}

func newID() string {
	return uuid.NewString()
}

// TransactionManager implements repositories.TransactionManager for the store
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn while holding the store lock. Isolation options are accepted
// and ignored; every memory transaction is serializable.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn, _ ...repositories.TxOption) error {
	s := tm.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// sorted returns the values of m ordered by less, falling back to insertion order
func sorted[T any](m map[string]record[T], keep func(T) bool, less func(a, b T) int) []T {
	recs := make([]record[T], 0, len(m))
	for _, r := range m {
		if keep == nil || keep(r.v) {
			recs = append(recs, r)
		}
	}
	slices.SortFunc(recs, func(a, b record[T]) int {
		if less != nil {
			if c := less(a.v, b.v); c != 0 {
				return c
			}
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.v
	}
	return out
}

func oldestFirst(a, b time.Time) int { return a.Compare(b) }
func newestFirst(a, b time.Time) int { return b.Compare(a) }
