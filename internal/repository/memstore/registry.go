package memstore

import (
	"context"
	"sort"

	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/repository"
)

type txManager struct{}

// WithinTx runs fn directly; each store call is atomic on its own.
func (txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

type pinger struct{}

func (pinger) Ping(ctx context.Context) error { return ctx.Err() }

// NewRegistry returns empty in-memory stores for every entity.
func NewRegistry() *repository.Registry {
	types := New(model.MembershipTypes)
	members := New(model.Members)
	opportunities := New(model.Opportunities)
	cancellations := New(model.Cancellations)
	return &repository.Registry{
		MembershipTypes:  types,
		NAICSCodes:       New(model.NAICSCodes),
		Organizations:    New(model.Organizations),
		Members:          members,
		Contacts:         New(model.Contacts),
		Opportunities:    opportunities,
		Interactions:     New(model.Interactions),
		Cancellations:    cancellations,
		Notes:            New(model.Notes),
		ProductionEmails: New(model.ProductionEmails),
		Dashboard: &dashboardRepository{
			types:         types,
			members:       members,
			opportunities: opportunities,
			cancellations: cancellations,
		},
		Tx:     txManager{},
		Pinger: pinger{},
	}
}

type dashboardRepository struct {
	types         *Store[model.MembershipType]
	members       *Store[model.Member]
	opportunities *Store[model.Opportunity]
	cancellations *Store[model.Cancellation]
}

func (d *dashboardRepository) MemberActivity(ctx context.Context) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	var active, inactive int
	for _, m := range d.members.all() {
		if m.Active {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive, nil
}

func (d *dashboardRepository) MembersByType(ctx context.Context) ([]model.Count, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	perType := map[int64]int{}
	for _, m := range d.members.all() {
		perType[m.MembershipTypeID]++
	}
	out := []model.Count{}
	for _, t := range d.types.all() {
		out = append(out, model.Count{Label: t.Name, Count: perType[t.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (d *dashboardRepository) OpportunitiesByStage(ctx context.Context) ([]model.StageTotal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	byStage := map[string]*model.StageTotal{}
	for _, o := range d.opportunities.all() {
		st, ok := byStage[o.Stage]
		if !ok {
			st = &model.StageTotal{Stage: o.Stage}
			byStage[o.Stage] = st
		}
		st.Count++
		st.ValueCents += o.ValueCents
	}
	out := make([]model.StageTotal, 0, len(byStage))
	for _, st := range byStage {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stage < out[j].Stage })
	return out, nil
}

func (d *dashboardRepository) CancellationsByReason(ctx context.Context) ([]model.Count, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	byReason := map[string]int{}
	for _, c := range d.cancellations.all() {
		byReason[c.Reason]++
	}
	out := make([]model.Count, 0, len(byReason))
	for reason, n := range byReason {
		out = append(out, model.Count{Label: reason, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}
