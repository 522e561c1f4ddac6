package sqlstore

import (
	"context"
	"database/sql"

	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/repository"
)

type dashboardRepository struct{ db *sql.DB }

// NewDashboardRepository serves the dashboard aggregates with plain GROUP BY queries
// that run unchanged on Postgres and SQLite.
func NewDashboardRepository(db *sql.DB) repository.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) MemberActivity(ctx context.Context) (int, int, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, 0, err
	}
	var active, inactive int
	err := getQ(ctx, r.db).QueryRowContext(ctx,
		`SELECT CAST(COALESCE(SUM(CASE WHEN active THEN 1 ELSE 0 END), 0) AS BIGINT),
		        CAST(COALESCE(SUM(CASE WHEN active THEN 0 ELSE 1 END), 0) AS BIGINT)
		 FROM members`,
	).Scan(&active, &inactive)
	if err != nil {
		return 0, 0, repository.MapError(err)
	}
	return active, inactive, nil
}

func (r *dashboardRepository) MembersByType(ctx context.Context) ([]model.Count, error) {
	return r.counts(ctx,
		`SELECT mt.name, COUNT(m.id)
		 FROM membership_types mt
		 LEFT JOIN members m ON m.membership_type_id = mt.id
		 GROUP BY mt.id, mt.name
		 ORDER BY mt.name`)
}

func (r *dashboardRepository) CancellationsByReason(ctx context.Context) ([]model.Count, error) {
	return r.counts(ctx,
		`SELECT reason, COUNT(*)
		 FROM cancellations
		 GROUP BY reason
		 ORDER BY COUNT(*) DESC, reason`)
}

func (r *dashboardRepository) OpportunitiesByStage(ctx context.Context) ([]model.StageTotal, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.db).QueryContext(ctx,
		`SELECT stage, COUNT(*), CAST(COALESCE(SUM(value_cents), 0) AS BIGINT)
		 FROM opportunities
		 GROUP BY stage
		 ORDER BY stage`)
	if err != nil {
		return nil, repository.MapError(err)
	}
	defer rows.Close()
	out := []model.StageTotal{}
	for rows.Next() {
		var st model.StageTotal
		if err := rows.Scan(&st.Stage, &st.Count, &st.ValueCents); err != nil {
			return nil, repository.MapError(err)
		}
		out = append(out, st)
	}
	return out, repository.MapError(rows.Err())
}

func (r *dashboardRepository) counts(ctx context.Context, stmt string) ([]model.Count, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.db).QueryContext(ctx, stmt)
	if err != nil {
		return nil, repository.MapError(err)
	}
	defer rows.Close()
	out := []model.Count{}
	for rows.Next() {
		var c model.Count
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, repository.MapError(err)
		}
		out = append(out, c)
	}
	return out, repository.MapError(rows.Err())
}
