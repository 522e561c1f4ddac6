// Package memstore keeps every entity in process memory. It backs the memory driver and
// service tests; constraints beyond row versions are not enforced.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/query"
	"github.com/maxviazov/member-crm/internal/repository"
)

type Store[T any] struct {
	mu     sync.RWMutex
	desc   model.Descriptor[T]
	items  []T // ordered by id
	nextID int64
	now    func() time.Time
	source *query.MemorySource[T]
}

func New[T any](desc model.Descriptor[T]) *Store[T] {
	s := &Store[T]{desc: desc, nextID: 1, now: func() time.Time { return time.Now().UTC() }}
	s.source = query.NewMemorySource(desc.Schema, s.all)
	return s
}

// all returns a copy so sources can sort without holding the lock.
func (s *Store[T]) all() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) indexOf(id int64) int {
	for i := range s.items {
		if s.desc.Base(&s.items[i]).ID == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) Create(ctx context.Context, v T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.desc.Base(&v)
	now := s.now()
	b.ID, b.RowVersion, b.CreatedAt, b.UpdatedAt = s.nextID, 1, now, now
	s.nextID++
	s.items = append(s.items, v)
	return v, nil
}

func (s *Store[T]) GetByID(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return zero, repository.ErrNotFound
	}
	return s.items[i], nil
}

func (s *Store[T]) Update(ctx context.Context, v T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.desc.Base(&v)
	i := s.indexOf(b.ID)
	if i < 0 {
		return zero, repository.ErrNotFound
	}
	stored := s.desc.Base(&s.items[i])
	if stored.RowVersion != b.RowVersion {
		return zero, repository.ErrConflict
	}
	b.CreatedAt = stored.CreatedAt
	b.UpdatedAt = s.now()
	b.RowVersion = stored.RowVersion + 1
	s.items[i] = v
	return v, nil
}

func (s *Store[T]) Delete(ctx context.Context, id, version int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	if version > 0 && s.desc.Base(&s.items[i]).RowVersion != version {
		return repository.ErrConflict
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store[T]) Count(ctx context.Context, p query.Plan) (int, error) {
	return s.source.Count(ctx, p)
}

func (s *Store[T]) Fetch(ctx context.Context, p query.Plan, offset, limit int) ([]T, error) {
	return s.source.Fetch(ctx, p, offset, limit)
}

var _ repository.Repository[model.Note] = (*Store[model.Note])(nil)
