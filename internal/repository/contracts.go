package repository

import (
	"context"

	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/query"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// Counter counts records matching a plan; every Repository is one.
type Counter interface {
	Count(ctx context.Context, p query.Plan) (int, error)
}

// Repository declares persistence for one entity type. Listing goes through the embedded
// query.Source so callers compose filters, sort and paging before anything is executed.
//
// Update and Delete compare the row version: a stale version yields ErrConflict,
// a missing row ErrNotFound. Delete with version 0 skips the comparison.
type Repository[T any] interface {
	query.Source[T]
	Create(ctx context.Context, v T) (T, error)
	GetByID(ctx context.Context, id int64) (T, error)
	Update(ctx context.Context, v T) (T, error)
	Delete(ctx context.Context, id, version int64) error
}

// DashboardRepository serves the grouped aggregates behind the dashboard.
type DashboardRepository interface {
	MemberActivity(ctx context.Context) (active, inactive int, err error)
	MembersByType(ctx context.Context) ([]model.Count, error)
	OpportunitiesByStage(ctx context.Context) ([]model.StageTotal, error)
	CancellationsByReason(ctx context.Context) ([]model.Count, error)
}
