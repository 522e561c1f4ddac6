package model

import (
	"time"

	"github.com/maxviazov/member-crm/internal/query"
)

// Descriptor ties an entity type to its resource name (also its table), the fields it
// exposes to filtering and sorting, and its Base.
type Descriptor[T any] struct {
	Name   string
	Schema query.Schema[T]
	Base   func(*T) *Base
}

func idField[T any](base func(*T) *Base) query.Field[T] {
	return query.Int("id", "id", func(v T) int64 { return base(&v).ID })
}

func createdField[T any](base func(*T) *Base) query.Field[T] {
	return query.Time("created", "created_at", func(v T) time.Time { return base(&v).CreatedAt })
}

func describe[T any](name string, base func(*T) *Base, fields ...query.Field[T]) Descriptor[T] {
	all := append([]query.Field[T]{idField(base), createdField(base)}, fields...)
	return Descriptor[T]{Name: name, Schema: query.NewSchema(all...), Base: base}
}

var MembershipTypes = describe("membership_types",
	func(v *MembershipType) *Base { return &v.Base },
	query.Text("name", "name", func(v MembershipType) string { return v.Name }),
	query.Text("description", "description", func(v MembershipType) string { return v.Description }),
	query.Int("dues", "annual_dues_cents", func(v MembershipType) int64 { return v.AnnualDuesCents }),
)

var NAICSCodes = describe("naics_codes",
	func(v *NAICSCode) *Base { return &v.Base },
	query.Text("code", "code", func(v NAICSCode) string { return v.Code }),
	query.Text("title", "title", func(v NAICSCode) string { return v.Title }),
)

var Organizations = describe("organizations",
	func(v *Organization) *Base { return &v.Base },
	query.Text("name", "name", func(v Organization) string { return v.Name }),
	query.Text("city", "city", func(v Organization) string { return v.City }),
	query.Text("state", "state", func(v Organization) string { return v.State }),
	query.NullableInt("naics_code_id", "naics_code_id", func(v Organization) *int64 { return v.NAICSCodeID }),
)

var Members = describe("members",
	func(v *Member) *Base { return &v.Base },
	query.Text("name", "name", func(v Member) string { return v.Name }),
	query.Text("email", "email", func(v Member) string { return v.Email }),
	query.NullableInt("organization_id", "organization_id", func(v Member) *int64 { return v.OrganizationID }),
	query.Int("membership_type_id", "membership_type_id", func(v Member) int64 { return v.MembershipTypeID }),
	query.Bool("active", "active", func(v Member) bool { return v.Active }),
	query.Time("joined", "joined_on", func(v Member) time.Time { return v.JoinedOn }),
	query.NullableTime("renews", "renews_on", func(v Member) *time.Time { return v.RenewsOn }),
)

var Contacts = describe("contacts",
	func(v *Contact) *Base { return &v.Base },
	query.Text("first_name", "first_name", func(v Contact) string { return v.FirstName }),
	query.Text("last_name", "last_name", func(v Contact) string { return v.LastName }),
	query.Text("email", "email", func(v Contact) string { return v.Email }),
	query.NullableInt("organization_id", "organization_id", func(v Contact) *int64 { return v.OrganizationID }),
	query.Bool("primary", "is_primary", func(v Contact) bool { return v.Primary }),
)

var Opportunities = describe("opportunities",
	func(v *Opportunity) *Base { return &v.Base },
	query.Text("name", "name", func(v Opportunity) string { return v.Name }),
	query.Text("stage", "stage", func(v Opportunity) string { return v.Stage }),
	query.Int("organization_id", "organization_id", func(v Opportunity) int64 { return v.OrganizationID }),
	query.NullableInt("contact_id", "contact_id", func(v Opportunity) *int64 { return v.ContactID }),
	query.Bool("closed", "closed", func(v Opportunity) bool { return v.Closed }),
	query.Int("value", "value_cents", func(v Opportunity) int64 { return v.ValueCents }),
	query.NullableTime("close", "close_on", func(v Opportunity) *time.Time { return v.CloseOn }),
)

var Interactions = describe("interactions",
	func(v *Interaction) *Base { return &v.Base },
	query.Text("subject", "subject", func(v Interaction) string { return v.Subject }),
	query.Text("kind", "kind", func(v Interaction) string { return v.Kind }),
	query.Int("contact_id", "contact_id", func(v Interaction) int64 { return v.ContactID }),
	query.NullableInt("member_id", "member_id", func(v Interaction) *int64 { return v.MemberID }),
	query.Bool("follow_up", "follow_up", func(v Interaction) bool { return v.FollowUp }),
	query.Time("occurred", "occurred_at", func(v Interaction) time.Time { return v.OccurredAt }),
)

var Cancellations = describe("cancellations",
	func(v *Cancellation) *Base { return &v.Base },
	query.Text("reason", "reason", func(v Cancellation) string { return v.Reason }),
	query.Int("member_id", "member_id", func(v Cancellation) int64 { return v.MemberID }),
	query.Bool("refunded", "refunded", func(v Cancellation) bool { return v.Refunded }),
	query.Time("cancelled", "cancelled_on", func(v Cancellation) time.Time { return v.CancelledOn }),
)

var Notes = describe("notes",
	func(v *Note) *Base { return &v.Base },
	query.Text("body", "body", func(v Note) string { return v.Body }),
	query.NullableInt("member_id", "member_id", func(v Note) *int64 { return v.MemberID }),
	query.NullableInt("contact_id", "contact_id", func(v Note) *int64 { return v.ContactID }),
	query.Bool("pinned", "pinned", func(v Note) bool { return v.Pinned }),
)

var ProductionEmails = describe("production_emails",
	func(v *ProductionEmail) *Base { return &v.Base },
	query.Text("subject", "subject", func(v ProductionEmail) string { return v.Subject }),
	query.Text("recipient", "recipient", func(v ProductionEmail) string { return v.Recipient }),
	query.Bool("sent", "sent", func(v ProductionEmail) bool { return v.Sent }),
	query.NullableTime("sent_at", "sent_at", func(v ProductionEmail) *time.Time { return v.SentAt }),
)
