// Package contract holds behaviour suites every repository driver must pass.
package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/query"
	"github.com/maxviazov/member-crm/internal/repository"
)

// RegistryFactory returns a registry over empty storage and a cleanup func.
type RegistryFactory func(t *testing.T) (*repository.Registry, func())

// Capabilities switches off expectations a driver does not provide.
type Capabilities struct {
	// Constraints: unique and foreign key violations are reported.
	Constraints bool
	// Transactional: WithinTx rolls back on error.
	Transactional bool
}

// Run executes every suite against the factory.
func Run(t *testing.T, makeRegistry RegistryFactory, caps Capabilities) {
	t.Helper()
	t.Run("crud", func(t *testing.T) { RunCRUDContract(t, makeRegistry, caps) })
	t.Run("listing", func(t *testing.T) { RunListingContract(t, makeRegistry) })
	t.Run("dashboard", func(t *testing.T) { RunDashboardContract(t, makeRegistry) })
	t.Run("pinger", func(t *testing.T) { RunPingerContract(t, makeRegistry) })
	if caps.Transactional {
		t.Run("tx", func(t *testing.T) { RunTxManagerContract(t, makeRegistry) })
	}
}

func ptr[T any](v T) *T { return &v }

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func seedType(t *testing.T, reg *repository.Registry, name string) model.MembershipType {
	t.Helper()
	mt, err := reg.MembershipTypes.Create(context.Background(), model.MembershipType{Name: name, AnnualDuesCents: 10000})
	if err != nil {
		t.Fatalf("seed membership type: %v", err)
	}
	return mt
}

func seedOrg(t *testing.T, reg *repository.Registry, name string) model.Organization {
	t.Helper()
	org, err := reg.Organizations.Create(context.Background(), model.Organization{Name: name, City: "Springfield"})
	if err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return org
}

func RunCRUDContract(t *testing.T, makeRegistry RegistryFactory, caps Capabilities) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := reg.MembershipTypes.Create(ctx, model.MembershipType{Name: "Gold", Description: "top tier", AnnualDuesCents: 50000})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.ID == 0 || created.RowVersion != 1 || created.CreatedAt.IsZero() {
			t.Fatalf("base not stamped: %+v", created.Base)
		}
		got, err := reg.MembershipTypes.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Name != "Gold" || got.AnnualDuesCents != 50000 {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("nullable_columns_round_trip", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mt := seedType(t, reg, "Basic")
		org := seedOrg(t, reg, "Acme")
		renews := day.AddDate(1, 0, 0)
		m, err := reg.Members.Create(ctx, model.Member{Name: "Ann", MembershipTypeID: mt.ID, OrganizationID: &org.ID, JoinedOn: day, RenewsOn: &renews, Active: true})
		if err != nil {
			t.Fatalf("create member: %v", err)
		}
		got, err := reg.Members.GetByID(ctx, m.ID)
		if err != nil {
			t.Fatalf("get member: %v", err)
		}
		if got.OrganizationID == nil || *got.OrganizationID != org.ID || got.RenewsOn == nil || !got.RenewsOn.Equal(renews) || !got.JoinedOn.Equal(day) || !got.Active {
			t.Fatalf("mismatch: %+v", got)
		}
		bare, err := reg.Members.Create(ctx, model.Member{Name: "Bob", MembershipTypeID: mt.ID, JoinedOn: day})
		if err != nil {
			t.Fatalf("create bare member: %v", err)
		}
		got, err = reg.Members.GetByID(ctx, bare.ID)
		if err != nil {
			t.Fatalf("get bare member: %v", err)
		}
		if got.OrganizationID != nil || got.RenewsOn != nil || got.Active {
			t.Fatalf("expected NULLs and false, got %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		_, err := reg.MembershipTypes.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update_bumps_version", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mt := seedType(t, reg, "Silver")
		mt.Description = "middle tier"
		updated, err := reg.MembershipTypes.Update(ctx, mt)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.RowVersion != 2 || updated.Description != "middle tier" {
			t.Fatalf("unexpected update result: %+v", updated)
		}
		if !updated.CreatedAt.Equal(mt.CreatedAt) {
			t.Fatalf("created_at changed: %v -> %v", mt.CreatedAt, updated.CreatedAt)
		}
	})

	t.Run("stale_update_conflict", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mt := seedType(t, reg, "Bronze")
		first := mt
		first.Description = "first writer"
		if _, err := reg.MembershipTypes.Update(ctx, first); err != nil {
			t.Fatalf("first update: %v", err)
		}
		second := mt
		second.Description = "second writer"
		if _, err := reg.MembershipTypes.Update(ctx, second); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("update_missing_not_found", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		missing := model.MembershipType{Base: model.Base{ID: 424242, RowVersion: 1}, Name: "Ghost"}
		if _, err := reg.MembershipTypes.Update(context.Background(), missing); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete_checks_version", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mt := seedType(t, reg, "Temp")
		if err := reg.MembershipTypes.Delete(ctx, mt.ID, mt.RowVersion+1); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict for stale delete, got %v", err)
		}
		if err := reg.MembershipTypes.Delete(ctx, mt.ID, mt.RowVersion); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := reg.MembershipTypes.GetByID(ctx, mt.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := reg.MembershipTypes.Delete(ctx, mt.ID, 0); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	if !caps.Constraints {
		return
	}

	t.Run("duplicate_name_already_exists", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		seedType(t, reg, "Dup")
		_, err := reg.MembershipTypes.Create(context.Background(), model.MembershipType{Name: "Dup"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("fk_violation_conflict", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		_, err := reg.Members.Create(context.Background(), model.Member{Name: "Orphan", MembershipTypeID: 9999999, JoinedOn: day})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict on FK violation, got %v", err)
		}
	})

	t.Run("delete_referenced_conflict", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mt := seedType(t, reg, "InUse")
		if _, err := reg.Members.Create(ctx, model.Member{Name: "Ann", MembershipTypeID: mt.ID, JoinedOn: day}); err != nil {
			t.Fatalf("seed member: %v", err)
		}
		if err := reg.MembershipTypes.Delete(ctx, mt.ID, 0); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict deleting a referenced type, got %v", err)
		}
	})
}

// seedMembers creates 12 members: even ones active, every third in the org, join dates descending.
func seedMembers(t *testing.T, reg *repository.Registry) (org model.Organization) {
	t.Helper()
	ctx := context.Background()
	mt := seedType(t, reg, "Standard")
	org = seedOrg(t, reg, "Globex")
	for i := 1; i <= 12; i++ {
		m := model.Member{
			Name:             fmt.Sprintf("Member %02d", i),
			Email:            fmt.Sprintf("m%02d@example.org", i),
			MembershipTypeID: mt.ID,
			JoinedOn:         day.AddDate(0, 0, -i),
			Active:           i%2 == 0,
		}
		if i%3 == 0 {
			m.OrganizationID = ptr(org.ID)
		}
		if i == 1 {
			m.Name = "John Smith"
		}
		if _, err := reg.Members.Create(ctx, m); err != nil {
			t.Fatalf("seed member %d: %v", i, err)
		}
	}
	return org
}

func names(items []model.Member) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.Name)
	}
	return out
}

func RunListingContract(t *testing.T, makeRegistry RegistryFactory) {
	t.Helper()

	t.Run("pages_split_and_clamp", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		seedMembers(t, reg)
		ctx := context.Background()
		q := query.From[model.Member](reg.Members).OrderBy("name", query.Asc)
		seen := map[int64]bool{}
		for page, want := range map[int]int{1: 5, 2: 5, 3: 2} {
			p, err := query.Paginate(ctx, q, page, 5)
			if err != nil {
				t.Fatalf("page %d: %v", page, err)
			}
			if len(p.Items()) != want || p.TotalCount() != 12 || p.TotalPages() != 3 {
				t.Fatalf("page %d: len=%d total=%d pages=%d", page, len(p.Items()), p.TotalCount(), p.TotalPages())
			}
			for _, m := range p.Items() {
				if seen[m.ID] {
					t.Fatalf("member %d on two pages", m.ID)
				}
				seen[m.ID] = true
			}
		}
		p, err := query.Paginate(ctx, q, 10, 5)
		if err != nil {
			t.Fatalf("clamped page: %v", err)
		}
		if p.Index() != 3 || len(p.Items()) != 2 {
			t.Fatalf("expected clamp to page 3, got %d with %d items", p.Index(), len(p.Items()))
		}
	})

	t.Run("filters_compose", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		org := seedMembers(t, reg)
		ctx := context.Background()
		q, active := query.Compose(query.From[model.Member](reg.Members),
			query.Ref("organization_id", org.ID),
			query.Flag("active", true),
		)
		if active != 2 {
			t.Fatalf("expected 2 active filters, got %d", active)
		}
		items, err := q.OrderBy("name", query.Asc).Fetch(ctx, 0, 20)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if got := names(items); len(got) != 2 || got[0] != "Member 06" || got[1] != "Member 12" {
			t.Fatalf("unexpected members: %v", got)
		}
	})

	t.Run("search_case_insensitive_substring", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		seedMembers(t, reg)
		q, _ := query.Compose(query.From[model.Member](reg.Members), query.Search("sMiTh", "name", "email"))
		n, err := q.Count(context.Background())
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 match, got %d", n)
		}
	})

	t.Run("search_folds_non_ascii", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mt := seedType(t, reg, "Standard")
		for _, name := range []string{"Émile Zola", "Emil Nolde"} {
			if _, err := reg.Members.Create(ctx, model.Member{Name: name, MembershipTypeID: mt.ID, JoinedOn: day}); err != nil {
				t.Fatalf("seed %q: %v", name, err)
			}
		}
		for term, want := range map[string]int{"émile": 1, "ÉMILE ZOLA": 1, "zola": 1, "emil": 1} {
			q, _ := query.Compose(query.From[model.Member](reg.Members), query.Search(term, "name"))
			p, err := query.Paginate(ctx, q, 1, 10)
			if err != nil {
				t.Fatalf("search %q: %v", term, err)
			}
			if p.TotalCount() != want {
				t.Fatalf("search %q: expected %d matches, got %d", term, want, p.TotalCount())
			}
		}
	})

	t.Run("sort_text_ignores_case", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mt := seedType(t, reg, "Standard")
		for _, name := range []string{"zed", "Alice", "bob"} {
			if _, err := reg.Members.Create(ctx, model.Member{Name: name, MembershipTypeID: mt.ID, JoinedOn: day}); err != nil {
				t.Fatalf("seed %q: %v", name, err)
			}
		}
		for dir, want := range map[query.Direction][]string{
			query.Asc:  {"Alice", "bob", "zed"},
			query.Desc: {"zed", "bob", "Alice"},
		} {
			items, err := query.From[model.Member](reg.Members).OrderBy("name", dir).Fetch(ctx, 0, 10)
			if err != nil {
				t.Fatalf("fetch %s: %v", dir, err)
			}
			if diff := cmp.Diff(want, names(items)); diff != "" {
				t.Fatalf("%s order mismatch (-want +got):\n%s", dir, diff)
			}
		}
	})

	t.Run("search_treats_wildcards_literally", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		seedMembers(t, reg)
		q, _ := query.Compose(query.From[model.Member](reg.Members), query.Search("%", "name"))
		n, err := q.Count(context.Background())
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Fatalf("expected no match for a literal %%, got %d", n)
		}
	})

	t.Run("sort_desc_and_nulls", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		seedMembers(t, reg)
		ctx := context.Background()
		items, err := query.From[model.Member](reg.Members).OrderBy("joined", query.Desc).Fetch(ctx, 0, 3)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if got := names(items); got[0] != "John Smith" || got[1] != "Member 02" {
			t.Fatalf("unexpected order: %v", got)
		}
		items, err = query.From[model.Member](reg.Members).OrderBy("organization_id", query.Asc).Fetch(ctx, 0, 12)
		if err != nil {
			t.Fatalf("fetch by org: %v", err)
		}
		if items[0].OrganizationID != nil || items[11].OrganizationID == nil {
			t.Fatalf("expected NULL organizations first")
		}
	})

	t.Run("unmatched_filter_empty_page", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		seedMembers(t, reg)
		q, _ := query.Compose(query.From[model.Member](reg.Members), query.Ref("membership_type_id", 99999))
		p, err := query.Paginate(context.Background(), q, 1, 10)
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		if p.TotalCount() != 0 || len(p.Items()) != 0 || p.TotalPages() != 1 {
			t.Fatalf("expected one empty page, got %+v", p)
		}
	})

	t.Run("unknown_field_rejected", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		q := query.From[model.Member](reg.Members).Where(query.Criterion{Field: "password", Op: query.OpEq, Value: "x"})
		if _, err := q.Count(context.Background()); !errors.Is(err, query.ErrUnknownField) {
			t.Fatalf("expected ErrUnknownField, got %v", err)
		}
	})
}

func RunDashboardContract(t *testing.T, makeRegistry RegistryFactory) {
	t.Helper()

	t.Run("aggregates", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		gold := seedType(t, reg, "Gold")
		seedType(t, reg, "Empty")
		org := seedOrg(t, reg, "Initech")
		var memberIDs []int64
		for i := 0; i < 3; i++ {
			m, err := reg.Members.Create(ctx, model.Member{Name: fmt.Sprintf("M%d", i), MembershipTypeID: gold.ID, JoinedOn: day, Active: i > 0})
			if err != nil {
				t.Fatalf("seed member: %v", err)
			}
			memberIDs = append(memberIDs, m.ID)
		}
		for _, o := range []model.Opportunity{
			{Name: "A", OrganizationID: org.ID, Stage: model.StageWon, ValueCents: 100},
			{Name: "B", OrganizationID: org.ID, Stage: model.StageWon, ValueCents: 250},
			{Name: "C", OrganizationID: org.ID, Stage: model.StageProspect},
		} {
			if _, err := reg.Opportunities.Create(ctx, o); err != nil {
				t.Fatalf("seed opportunity: %v", err)
			}
		}
		for _, reason := range []string{"price", "moved", "price"} {
			if _, err := reg.Cancellations.Create(ctx, model.Cancellation{MemberID: memberIDs[0], Reason: reason, CancelledOn: day}); err != nil {
				t.Fatalf("seed cancellation: %v", err)
			}
		}

		active, inactive, err := reg.Dashboard.MemberActivity(ctx)
		if err != nil || active != 2 || inactive != 1 {
			t.Fatalf("member activity: active=%d inactive=%d err=%v", active, inactive, err)
		}
		byType, err := reg.Dashboard.MembersByType(ctx)
		if err != nil {
			t.Fatalf("members by type: %v", err)
		}
		if len(byType) != 2 || byType[0] != (model.Count{Label: "Empty", Count: 0}) || byType[1] != (model.Count{Label: "Gold", Count: 3}) {
			t.Fatalf("unexpected members by type: %+v", byType)
		}
		stages, err := reg.Dashboard.OpportunitiesByStage(ctx)
		if err != nil {
			t.Fatalf("opportunities by stage: %v", err)
		}
		want := []model.StageTotal{{Stage: model.StageProspect, Count: 1}, {Stage: model.StageWon, Count: 2, ValueCents: 350}}
		if len(stages) != 2 || stages[0] != want[0] || stages[1] != want[1] {
			t.Fatalf("unexpected stages: %+v", stages)
		}
		reasons, err := reg.Dashboard.CancellationsByReason(ctx)
		if err != nil {
			t.Fatalf("cancellations by reason: %v", err)
		}
		if len(reasons) != 2 || reasons[0] != (model.Count{Label: "price", Count: 2}) {
			t.Fatalf("unexpected reasons: %+v", reasons)
		}
	})

	t.Run("empty_database", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		active, inactive, err := reg.Dashboard.MemberActivity(context.Background())
		if err != nil || active != 0 || inactive != 0 {
			t.Fatalf("expected zeros, got %d/%d err=%v", active, inactive, err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeRegistry RegistryFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := reg.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := reg.NAICSCodes.Create(ctx, model.NAICSCode{Code: "5415", Title: "Computer Systems Design"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := reg.NAICSCodes.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		errMarker := errors.New("boom")
		err := reg.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := reg.NAICSCodes.Create(ctx, model.NAICSCode{Code: "5416", Title: "Consulting"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := reg.NAICSCodes.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makeRegistry RegistryFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		reg, cleanup := makeRegistry(t)
		t.Cleanup(cleanup)
		if err := reg.Pinger.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
