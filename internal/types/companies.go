package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/schedule"
)

// CreateCompanyRequest is the body of POST /companies.
type CreateCompanyRequest struct {
	Name                     string   `json:"name" validate:"required,max=200"`
	Location                 string   `json:"location,omitempty" validate:"max=200"`
	LinkedInProfile          string   `json:"linkedin_profile,omitempty" validate:"omitempty,url"`
	Emails                   []string `json:"emails,omitempty" validate:"dive,email"`
	PhoneNumbers             []string `json:"phone_numbers,omitempty" validate:"dive,min=3,max=40"`
	Comments                 string   `json:"comments,omitempty" validate:"max=4000"`
	CommunicationPeriodicity string   `json:"communication_periodicity,omitempty" validate:"omitempty,periodicity"`
}

// UpdateCompanyRequest is the body of PUT /companies/{id}. Absent fields are left unchanged.
type UpdateCompanyRequest struct {
	Name                     *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Location                 *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	LinkedInProfile          *string  `json:"linkedin_profile,omitempty" validate:"omitempty,url"`
	Emails                   []string `json:"emails,omitempty" validate:"omitempty,dive,email"`
	PhoneNumbers             []string `json:"phone_numbers,omitempty" validate:"omitempty,dive,min=3,max=40"`
	Comments                 *string  `json:"comments,omitempty" validate:"omitempty,max=4000"`
	CommunicationPeriodicity *string  `json:"communication_periodicity,omitempty" validate:"omitempty,periodicity"`
}

// UpdatePeriodicityRequest is the body of PUT /companies/{id}/periodicity.
type UpdatePeriodicityRequest struct {
	CommunicationPeriodicity string `json:"communication_periodicity" validate:"required,periodicity"`
}

// CreateCommunicationRequest is the body of POST /companies/{id}/communications.
type CreateCommunicationRequest struct {
	Type  schedule.CommunicationType `json:"type" validate:"required,commtype"`
	Date  time.Time                  `json:"date" validate:"required"`
	Notes string                     `json:"notes,omitempty" validate:"max=4000"`
}

// Validate validates the CreateCompanyRequest.
func (r *CreateCompanyRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the UpdateCompanyRequest.
func (r *UpdateCompanyRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the UpdatePeriodicityRequest.
func (r *UpdatePeriodicityRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the CreateCommunicationRequest.
func (r *CreateCommunicationRequest) Validate() error {
	return Validator().Struct(r)
}

// CommunicationView is a communication as returned by the API.
type CommunicationView struct {
	ID        uuid.UUID                  `json:"id"`
	Type      schedule.CommunicationType `json:"type"`
	Date      time.Time                  `json:"date"`
	Notes     string                     `json:"notes,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}

// CompanyView is a company with its follow-up status computed at request time.
type CompanyView struct {
	ID                       uuid.UUID           `json:"id"`
	Name                     string              `json:"name"`
	Location                 string              `json:"location"`
	LinkedInProfile          string              `json:"linkedin_profile"`
	Emails                   []string            `json:"emails"`
	PhoneNumbers             []string            `json:"phone_numbers"`
	Comments                 string              `json:"comments"`
	CommunicationPeriodicity string              `json:"communication_periodicity"`
	Communications           []CommunicationView `json:"communications,omitempty"`
	Schedule                 *schedule.Status    `json:"schedule"`
	CreatedAt                time.Time           `json:"created_at"`
	UpdatedAt                time.Time           `json:"updated_at"`
}

// FollowUpFilter selects which companies GET /follow-ups returns.
type FollowUpFilter string

const (
	FollowUpOverdue  FollowUpFilter = "overdue"
	FollowUpDueToday FollowUpFilter = "due_today"
	FollowUpAll      FollowUpFilter = "all" // overdue or due today
)

// ParseFollowUpFilter maps a query value to a filter. Empty means FollowUpAll.
func ParseFollowUpFilter(s string) (FollowUpFilter, bool) {
	switch FollowUpFilter(s) {
	case "", FollowUpAll:
		return FollowUpAll, true
	case FollowUpOverdue, FollowUpDueToday:
		return FollowUpFilter(s), true
	default:
		return "", false
	}
}

// Matches reports whether a status is selected by the filter.
func (f FollowUpFilter) Matches(s schedule.Status) bool {
	switch f {
	case FollowUpOverdue:
		return s.IsOverdue
	case FollowUpDueToday:
		return s.IsDueToday
	default:
		return s.NeedsFollowUp()
	}
}

// FollowUp is one entry of the follow-up listing.
type FollowUp struct {
	CompanyID     uuid.UUID      `json:"company_id"`
	CompanyName   string         `json:"company_name"`
	IsOverdue     bool           `json:"is_overdue"`
	IsDueToday    bool           `json:"is_due_today"`
	NextScheduled *schedule.Next `json:"next_scheduled,omitempty"`
}
