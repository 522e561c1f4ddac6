package repository

import "github.com/maxviazov/member-crm/internal/model"

// Registry bundles the repositories of every entity behind one storage driver.
type Registry struct {
	MembershipTypes  Repository[model.MembershipType]
	NAICSCodes       Repository[model.NAICSCode]
	Organizations    Repository[model.Organization]
	Members          Repository[model.Member]
	Contacts         Repository[model.Contact]
	Opportunities    Repository[model.Opportunity]
	Interactions     Repository[model.Interaction]
	Cancellations    Repository[model.Cancellation]
	Notes            Repository[model.Note]
	ProductionEmails Repository[model.ProductionEmail]

	Dashboard DashboardRepository
	Tx        TxManager
	Pinger    Pinger
}

// Counters maps resource names to their repositories for per-entity totals.
func (r *Registry) Counters() map[string]Counter {
	return map[string]Counter{
		model.MembershipTypes.Name:  r.MembershipTypes,
		model.NAICSCodes.Name:       r.NAICSCodes,
		model.Organizations.Name:    r.Organizations,
		model.Members.Name:          r.Members,
		model.Contacts.Name:         r.Contacts,
		model.Opportunities.Name:    r.Opportunities,
		model.Interactions.Name:     r.Interactions,
		model.Cancellations.Name:    r.Cancellations,
		model.Notes.Name:            r.Notes,
		model.ProductionEmails.Name: r.ProductionEmails,
	}
}
