package sqlstore

import "github.com/maxviazov/member-crm/internal/repository"

// NewRegistry wires a store for every table of db.
func NewRegistry(db *repository.Database) *repository.Registry {
	return &repository.Registry{
		MembershipTypes:  New(db.DB, db.Dialect, MembershipTypes),
		NAICSCodes:       New(db.DB, db.Dialect, NAICSCodes),
		Organizations:    New(db.DB, db.Dialect, Organizations),
		Members:          New(db.DB, db.Dialect, Members),
		Contacts:         New(db.DB, db.Dialect, Contacts),
		Opportunities:    New(db.DB, db.Dialect, Opportunities),
		Interactions:     New(db.DB, db.Dialect, Interactions),
		Cancellations:    New(db.DB, db.Dialect, Cancellations),
		Notes:            New(db.DB, db.Dialect, Notes),
		ProductionEmails: New(db.DB, db.Dialect, ProductionEmails),
		Dashboard:        NewDashboardRepository(db.DB),
		Tx:               NewTxManager(db.DB),
		Pinger:           db,
	}
}
