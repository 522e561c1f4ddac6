package sqlstore

import (
	"time"

	"github.com/maxviazov/member-crm/internal/model"
)

func nullInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

var MembershipTypes = Table[model.MembershipType]{
	Descriptor: model.MembershipTypes,
	Columns:    []string{"name", "description", "annual_dues_cents"},
	Values: func(v *model.MembershipType) []any {
		return []any{v.Name, v.Description, v.AnnualDuesCents}
	},
	Targets: func(v *model.MembershipType) []any {
		return []any{&v.Name, &v.Description, &v.AnnualDuesCents}
	},
}

var NAICSCodes = Table[model.NAICSCode]{
	Descriptor: model.NAICSCodes,
	Columns:    []string{"code", "title"},
	Values:     func(v *model.NAICSCode) []any { return []any{v.Code, v.Title} },
	Targets:    func(v *model.NAICSCode) []any { return []any{&v.Code, &v.Title} },
}

var Organizations = Table[model.Organization]{
	Descriptor: model.Organizations,
	Columns:    []string{"name", "website", "phone", "city", "state", "naics_code_id"},
	Values: func(v *model.Organization) []any {
		return []any{v.Name, v.Website, v.Phone, v.City, v.State, nullInt(v.NAICSCodeID)}
	},
	Targets: func(v *model.Organization) []any {
		return []any{&v.Name, &v.Website, &v.Phone, &v.City, &v.State, &v.NAICSCodeID}
	},
}

var Members = Table[model.Member]{
	Descriptor: model.Members,
	Columns:    []string{"name", "email", "organization_id", "membership_type_id", "joined_on", "renews_on", "active"},
	Values: func(v *model.Member) []any {
		return []any{v.Name, v.Email, nullInt(v.OrganizationID), v.MembershipTypeID, v.JoinedOn.UTC(), nullTime(v.RenewsOn), v.Active}
	},
	Targets: func(v *model.Member) []any {
		return []any{&v.Name, &v.Email, &v.OrganizationID, &v.MembershipTypeID, &v.JoinedOn, &v.RenewsOn, &v.Active}
	},
}

var Contacts = Table[model.Contact]{
	Descriptor: model.Contacts,
	Columns:    []string{"first_name", "last_name", "email", "phone", "title", "organization_id", "is_primary"},
	Values: func(v *model.Contact) []any {
		return []any{v.FirstName, v.LastName, v.Email, v.Phone, v.Title, nullInt(v.OrganizationID), v.Primary}
	},
	Targets: func(v *model.Contact) []any {
		return []any{&v.FirstName, &v.LastName, &v.Email, &v.Phone, &v.Title, &v.OrganizationID, &v.Primary}
	},
}

var Opportunities = Table[model.Opportunity]{
	Descriptor: model.Opportunities,
	Columns:    []string{"name", "organization_id", "contact_id", "stage", "value_cents", "close_on", "closed"},
	Values: func(v *model.Opportunity) []any {
		return []any{v.Name, v.OrganizationID, nullInt(v.ContactID), v.Stage, v.ValueCents, nullTime(v.CloseOn), v.Closed}
	},
	Targets: func(v *model.Opportunity) []any {
		return []any{&v.Name, &v.OrganizationID, &v.ContactID, &v.Stage, &v.ValueCents, &v.CloseOn, &v.Closed}
	},
}

var Interactions = Table[model.Interaction]{
	Descriptor: model.Interactions,
	Columns:    []string{"contact_id", "member_id", "kind", "subject", "occurred_at", "follow_up"},
	Values: func(v *model.Interaction) []any {
		return []any{v.ContactID, nullInt(v.MemberID), v.Kind, v.Subject, v.OccurredAt.UTC(), v.FollowUp}
	},
	Targets: func(v *model.Interaction) []any {
		return []any{&v.ContactID, &v.MemberID, &v.Kind, &v.Subject, &v.OccurredAt, &v.FollowUp}
	},
}

var Cancellations = Table[model.Cancellation]{
	Descriptor: model.Cancellations,
	Columns:    []string{"member_id", "reason", "cancelled_on", "refunded"},
	Values: func(v *model.Cancellation) []any {
		return []any{v.MemberID, v.Reason, v.CancelledOn.UTC(), v.Refunded}
	},
	Targets: func(v *model.Cancellation) []any {
		return []any{&v.MemberID, &v.Reason, &v.CancelledOn, &v.Refunded}
	},
}

var Notes = Table[model.Note]{
	Descriptor: model.Notes,
	Columns:    []string{"member_id", "contact_id", "body", "pinned"},
	Values: func(v *model.Note) []any {
		return []any{nullInt(v.MemberID), nullInt(v.ContactID), v.Body, v.Pinned}
	},
	Targets: func(v *model.Note) []any {
		return []any{&v.MemberID, &v.ContactID, &v.Body, &v.Pinned}
	},
}

var ProductionEmails = Table[model.ProductionEmail]{
	Descriptor: model.ProductionEmails,
	Columns:    []string{"subject", "recipient", "body", "sent_at", "sent"},
	Values: func(v *model.ProductionEmail) []any {
		return []any{v.Subject, v.Recipient, v.Body, nullTime(v.SentAt), v.Sent}
	},
	Targets: func(v *model.ProductionEmail) []any {
		return []any{&v.Subject, &v.Recipient, &v.Body, &v.SentAt, &v.Sent}
	},
}
