// Package model contains the CRM entities shared across layers.
// I keep it lean and focused on data shapes; validation rules live in struct tags.
package model

import "time"

// Base carries identity, the optimistic concurrency token and audit timestamps.
type Base struct {
	ID         int64     `json:"id"`
	RowVersion int64     `json:"row_version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MembershipType is a membership tier with its yearly dues.
type MembershipType struct {
	Base
	Name            string `json:"name" validate:"required,max=100"`
	Description     string `json:"description" validate:"max=500"`
	AnnualDuesCents int64  `json:"annual_dues_cents" validate:"gte=0"`
}

// NAICSCode is an industry classification code.
type NAICSCode struct {
	Base
	Code  string `json:"code" validate:"required,numeric,min=2,max=6"`
	Title string `json:"title" validate:"required,max=200"`
}

// Organization is a company or institution members and contacts belong to.
type Organization struct {
	Base
	Name        string `json:"name" validate:"required,max=200"`
	Website     string `json:"website" validate:"omitempty,url,max=200"`
	Phone       string `json:"phone" validate:"max=40"`
	City        string `json:"city" validate:"max=100"`
	State       string `json:"state" validate:"max=50"`
	NAICSCodeID *int64 `json:"naics_code_id,omitempty" validate:"omitempty,gt=0"`
}

// Member is a paying membership, optionally tied to an organization.
type Member struct {
	Base
	Name             string     `json:"name" validate:"required,max=200"`
	Email            string     `json:"email" validate:"omitempty,email,max=200"`
	OrganizationID   *int64     `json:"organization_id,omitempty" validate:"omitempty,gt=0"`
	MembershipTypeID int64      `json:"membership_type_id" validate:"required,gt=0"`
	JoinedOn         time.Time  `json:"joined_on" validate:"required"`
	RenewsOn         *time.Time `json:"renews_on,omitempty"`
	Active           bool       `json:"active"`
}

// Contact is a person the association talks to.
type Contact struct {
	Base
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Email          string `json:"email" validate:"omitempty,email,max=200"`
	Phone          string `json:"phone" validate:"max=40"`
	Title          string `json:"title" validate:"max=100"`
	OrganizationID *int64 `json:"organization_id,omitempty" validate:"omitempty,gt=0"`
	Primary        bool   `json:"primary"`
}

// Opportunity stages.
const (
	StageProspect    = "prospect"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageWon         = "won"
	StageLost        = "lost"
)

// Opportunity is a potential sale or sponsorship with an organization.
type Opportunity struct {
	Base
	Name           string     `json:"name" validate:"required,max=200"`
	OrganizationID int64      `json:"organization_id" validate:"required,gt=0"`
	ContactID      *int64     `json:"contact_id,omitempty" validate:"omitempty,gt=0"`
	Stage          string     `json:"stage" validate:"required,oneof=prospect qualified proposal negotiation won lost"`
	ValueCents     int64      `json:"value_cents" validate:"gte=0"`
	CloseOn        *time.Time `json:"close_on,omitempty"`
	Closed         bool       `json:"closed"`
}

// Interaction is a logged touch point with a contact.
type Interaction struct {
	Base
	ContactID  int64     `json:"contact_id" validate:"required,gt=0"`
	MemberID   *int64    `json:"member_id,omitempty" validate:"omitempty,gt=0"`
	Kind       string    `json:"kind" validate:"required,oneof=call email meeting event other"`
	Subject    string    `json:"subject" validate:"required,max=200"`
	OccurredAt time.Time `json:"occurred_at" validate:"required"`
	FollowUp   bool      `json:"follow_up"`
}

// Cancellation records a member leaving.
type Cancellation struct {
	Base
	MemberID    int64     `json:"member_id" validate:"required,gt=0"`
	Reason      string    `json:"reason" validate:"required,max=200"`
	CancelledOn time.Time `json:"cancelled_on" validate:"required"`
	Refunded    bool      `json:"refunded"`
}

// Note is free text attached to a member and/or a contact.
type Note struct {
	Base
	MemberID  *int64 `json:"member_id,omitempty" validate:"omitempty,gt=0"`
	ContactID *int64 `json:"contact_id,omitempty" validate:"omitempty,gt=0"`
	Body      string `json:"body" validate:"required,max=4000"`
	Pinned    bool   `json:"pinned"`
}

// ProductionEmail is an outbound email prepared for a recipient.
type ProductionEmail struct {
	Base
	Subject   string     `json:"subject" validate:"required,max=200"`
	Recipient string     `json:"recipient" validate:"required,email,max=200"`
	Body      string     `json:"body" validate:"required"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	Sent      bool       `json:"sent"`
}

// Count is one bar of a dashboard chart.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StageTotal aggregates opportunities in one stage.
type StageTotal struct {
	Stage      string `json:"stage"`
	Count      int    `json:"count"`
	ValueCents int64  `json:"value_cents"`
}

// DashboardSummary is the read-only aggregate behind the dashboard page.
type DashboardSummary struct {
	Totals                map[string]int `json:"totals"`
	ActiveMembers         int            `json:"active_members"`
	InactiveMembers       int            `json:"inactive_members"`
	MembersByType         []Count        `json:"members_by_type"`
	OpportunitiesByStage  []StageTotal   `json:"opportunities_by_stage"`
	CancellationsByReason []Count        `json:"cancellations_by_reason"`
	GeneratedAt           time.Time      `json:"generated_at"`
}
