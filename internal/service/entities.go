package service

import (
	"strings"
	"time"

	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/query"
)

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

var MembershipTypes = Entity[model.MembershipType]{
	Descriptor: model.MembershipTypes,
	List: ListSpec{
		Search: []string{"name", "description"},
		Sorts:  query.SortSpec{Fields: []string{"name", "dues", "created"}, Default: "name"},
	},
	Prepare: func(v *model.MembershipType) { trim(&v.Name, &v.Description) },
}

var NAICSCodes = Entity[model.NAICSCode]{
	Descriptor: model.NAICSCodes,
	List: ListSpec{
		Search: []string{"code", "title"},
		Sorts:  query.SortSpec{Fields: []string{"code", "title"}, Default: "code"},
	},
	Prepare: func(v *model.NAICSCode) { trim(&v.Code, &v.Title) },
}

var Organizations = Entity[model.Organization]{
	Descriptor: model.Organizations,
	List: ListSpec{
		Search: []string{"name", "city"},
		Refs:   []string{"naics_code_id"},
		Sorts:  query.SortSpec{Fields: []string{"name", "city", "state", "created"}, Default: "name"},
	},
	Prepare: func(v *model.Organization) {
		trim(&v.Name, &v.Website, &v.Phone, &v.City, &v.State)
		v.State = strings.ToUpper(v.State)
	},
}

var Members = Entity[model.Member]{
	Descriptor: model.Members,
	List: ListSpec{
		Search: []string{"name", "email"},
		Refs:   []string{"organization_id", "membership_type_id"},
		Flags:  []string{"active"},
		Sorts:  query.SortSpec{Fields: []string{"name", "joined", "renews", "created"}, Default: "name"},
	},
	Prepare: func(v *model.Member) {
		trim(&v.Name, &v.Email)
		v.Email = strings.ToLower(v.Email)
	},
}

var Contacts = Entity[model.Contact]{
	Descriptor: model.Contacts,
	List: ListSpec{
		Search: []string{"first_name", "last_name", "email"},
		Refs:   []string{"organization_id"},
		Flags:  []string{"primary"},
		Sorts:  query.SortSpec{Fields: []string{"last_name", "first_name", "email", "created"}, Default: "last_name"},
	},
	Prepare: func(v *model.Contact) {
		trim(&v.FirstName, &v.LastName, &v.Email, &v.Phone, &v.Title)
		v.Email = strings.ToLower(v.Email)
	},
}

var Opportunities = Entity[model.Opportunity]{
	Descriptor: model.Opportunities,
	List: ListSpec{
		Search: []string{"name", "stage"},
		Refs:   []string{"organization_id", "contact_id"},
		Flags:  []string{"closed"},
		Sorts:  query.SortSpec{Fields: []string{"name", "stage", "value", "close", "created"}, Default: "name"},
	},
	Prepare: func(v *model.Opportunity) {
		trim(&v.Name, &v.Stage)
		v.Stage = strings.ToLower(v.Stage)
		// won and lost are terminal stages
		if v.Stage == model.StageWon || v.Stage == model.StageLost {
			v.Closed = true
		}
	},
}

var Interactions = Entity[model.Interaction]{
	Descriptor: model.Interactions,
	List: ListSpec{
		Search: []string{"subject", "kind"},
		Refs:   []string{"contact_id", "member_id"},
		Flags:  []string{"follow_up"},
		Sorts:  query.SortSpec{Fields: []string{"occurred", "subject", "kind"}, Default: "occurred", DefaultDir: query.Desc},
	},
	Prepare: func(v *model.Interaction) {
		trim(&v.Subject, &v.Kind)
		v.Kind = strings.ToLower(v.Kind)
	},
}

var Cancellations = Entity[model.Cancellation]{
	Descriptor: model.Cancellations,
	List: ListSpec{
		Search: []string{"reason"},
		Refs:   []string{"member_id"},
		Flags:  []string{"refunded"},
		Sorts:  query.SortSpec{Fields: []string{"cancelled", "reason"}, Default: "cancelled", DefaultDir: query.Desc},
	},
	Prepare: func(v *model.Cancellation) { trim(&v.Reason) },
}

var Notes = Entity[model.Note]{
	Descriptor: model.Notes,
	List: ListSpec{
		Search: []string{"body"},
		Refs:   []string{"member_id", "contact_id"},
		Flags:  []string{"pinned"},
		Sorts:  query.SortSpec{Fields: []string{"created", "pinned"}, Default: "created", DefaultDir: query.Desc},
	},
	Prepare: func(v *model.Note) { trim(&v.Body) },
}

var ProductionEmails = Entity[model.ProductionEmail]{
	Descriptor: model.ProductionEmails,
	List: ListSpec{
		Search: []string{"subject", "recipient"},
		Flags:  []string{"sent"},
		Sorts:  query.SortSpec{Fields: []string{"created", "subject", "recipient", "sent_at"}, Default: "created", DefaultDir: query.Desc},
	},
	Prepare: func(v *model.ProductionEmail) {
		trim(&v.Subject, &v.Recipient)
		v.Recipient = strings.ToLower(v.Recipient)
		switch {
		case v.Sent && v.SentAt == nil:
			now := time.Now().UTC()
			v.SentAt = &now
		case v.SentAt != nil:
			v.Sent = true
		}
	},
}
