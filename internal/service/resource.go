package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/maxviazov/member-crm/internal/cache"
	"github.com/maxviazov/member-crm/internal/config"
	"github.com/maxviazov/member-crm/internal/events"
	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/repository"
)

// Deps are the collaborators every resource service shares.
type Deps struct {
	Cache  cache.Cache
	Events events.Publisher
	Paging config.PaginationConfig
	Logger zerolog.Logger

	summary *summaryCache
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.summary == nil {
		d.summary = newSummaryCache(d.Cache)
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	return d
}

// Entity describes one resource: its storage descriptor, listing rules and an optional
// normalization step run before validation on every write.
type Entity[T any] struct {
	model.Descriptor[T]
	List    ListSpec
	Prepare func(*T)
}

type resource[T any] struct {
	entity   Entity[T]
	repo     repository.Repository[T]
	deps     Deps
	validate *validator.Validate
	log      zerolog.Logger
}

func NewResource[T any](entity Entity[T], repo repository.Repository[T], deps Deps) Resource[T] {
	deps = deps.withDefaults()
	l := deps.Logger.With().Str("module", "service").Str("component", entity.Name).Logger()
	return &resource[T]{entity: entity, repo: repo, deps: deps, validate: newValidator(), log: l}
}

func (s *resource[T]) prepare(v *T) error {
	if s.entity.Prepare != nil {
		s.entity.Prepare(v)
	}
	return validateStruct(s.validate, v)
}

func (s *resource[T]) Create(ctx context.Context, v T) (T, error) {
	start := time.Now()
	var zero T
	*s.entity.Base(&v) = model.Base{}
	if err := s.prepare(&v); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("validation failed")
		return zero, err
	}
	out, err := s.repo.Create(ctx, v)
	if err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Msg("create failed")
		return zero, err
	}
	id := s.entity.Base(&out).ID
	s.afterWrite(ctx, events.ActionCreated, id, out)
	s.log.Info().Dur("took", time.Since(start)).Int64("id", id).Msg("created")
	return out, nil
}

func (s *resource[T]) Get(ctx context.Context, id int64) (T, error) {
	if id <= 0 {
		var zero T
		return zero, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.repo.GetByID(ctx, id)
}

func (s *resource[T]) Update(ctx context.Context, id int64, v T) (T, error) {
	var zero T
	b := s.entity.Base(&v)
	var ferrs []FieldError
	if id <= 0 {
		ferrs = append(ferrs, FieldError{Field: "id", Message: "must be > 0"})
	}
	if b.RowVersion <= 0 {
		ferrs = append(ferrs, FieldError{Field: "row_version", Message: "must be > 0"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return zero, err
	}
	b.ID = id
	if err := s.prepare(&v); err != nil {
		s.log.Debug().Int64("id", id).Interface("field_errors", FieldErrors(err)).Msg("validation failed")
		return zero, err
	}
	out, err := s.repo.Update(ctx, v)
	if err != nil {
		s.log.Warn().Err(err).Int64("id", id).Int64("row_version", b.RowVersion).Msg("update failed")
		return zero, err
	}
	s.afterWrite(ctx, events.ActionUpdated, id, out)
	return out, nil
}

func (s *resource[T]) Delete(ctx context.Context, id, version int64) error {
	var ferrs []FieldError
	if id <= 0 {
		ferrs = append(ferrs, FieldError{Field: "id", Message: "must be > 0"})
	}
	if version < 0 {
		ferrs = append(ferrs, FieldError{Field: "version", Message: "must be >= 0"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, version); err != nil {
		s.log.Warn().Err(err).Int64("id", id).Msg("delete failed")
		return err
	}
	s.afterWrite(ctx, events.ActionDeleted, id, nil)
	return nil
}

func (s *resource[T]) List(ctx context.Context, req ListRequest) (ListResult[T], error) {
	size := normalizePageSize(req.PageSize, s.deps.Paging)
	res, err := list(ctx, s.repo, s.entity.List, req, size)
	if err != nil {
		s.log.Error().Err(err).Int("page", req.Page).Int("page_size", size).Msg("list failed")
		return ListResult[T]{}, err
	}
	return res, nil
}

// afterWrite announces a committed change and drops the cached dashboard. Neither can undo
// the write, so failures are only logged.
func (s *resource[T]) afterWrite(ctx context.Context, action string, id int64, payload any) {
	if err := s.deps.summary.invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
	e, err := events.NewEvent(s.entity.Name, action, id, payload)
	if err == nil {
		err = s.deps.Events.Publish(ctx, e)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("action", action).Int64("id", id).Msg("event publish failed")
	}
}
