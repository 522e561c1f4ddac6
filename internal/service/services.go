package service

import (
	"time"

	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/repository"
)

// Services bundles one Resource per entity plus the dashboard.
type Services struct {
	MembershipTypes  Resource[model.MembershipType]
	NAICSCodes       Resource[model.NAICSCode]
	Organizations    Resource[model.Organization]
	Members          Resource[model.Member]
	Contacts         Resource[model.Contact]
	Opportunities    Resource[model.Opportunity]
	Interactions     Resource[model.Interaction]
	Cancellations    Resource[model.Cancellation]
	Notes            Resource[model.Note]
	ProductionEmails Resource[model.ProductionEmail]
	Dashboard        DashboardService
}

// New wires every service over reg. dashboardTTL bounds how stale a cached summary may be
// when writes bypass these services.
func New(reg *repository.Registry, deps Deps, dashboardTTL time.Duration) *Services {
	deps = deps.withDefaults()
	return &Services{
		MembershipTypes:  NewResource(MembershipTypes, reg.MembershipTypes, deps),
		NAICSCodes:       NewResource(NAICSCodes, reg.NAICSCodes, deps),
		Organizations:    NewResource(Organizations, reg.Organizations, deps),
		Members:          NewResource(Members, reg.Members, deps),
		Contacts:         NewResource(Contacts, reg.Contacts, deps),
		Opportunities:    NewResource(Opportunities, reg.Opportunities, deps),
		Interactions:     NewResource(Interactions, reg.Interactions, deps),
		Cancellations:    NewResource(Cancellations, reg.Cancellations, deps),
		Notes:            NewResource(Notes, reg.Notes, deps),
		ProductionEmails: NewResource(ProductionEmails, reg.ProductionEmails, deps),
		Dashboard:        newDashboardService(reg.Dashboard, reg.Counters(), deps.summary, dashboardTTL, deps.Logger),
	}
}
