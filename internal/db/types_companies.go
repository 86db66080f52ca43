package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/schedule"
)

// Company represents a tracked company and its communication history
type Company struct {
	ID                       uuid.UUID       `json:"id"`
	Name                     string          `json:"name"`
	NameNormalized           string          `json:"name_normalized"`
	Location                 string          `json:"location"`
	LinkedInProfile          string          `json:"linkedin_profile"`
	Emails                   []string        `json:"emails"`
	PhoneNumbers             []string        `json:"phone_numbers"`
	Comments                 string          `json:"comments"`
	CommunicationPeriodicity string          `json:"communication_periodicity"`
	Communications           []Communication `json:"communications"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// Communication is one recorded contact with a company. Rows are append-only.
type Communication struct {
	ID        uuid.UUID                  `json:"id"`
	CompanyID uuid.UUID                  `json:"company_id"`
	Seq       int64                      `json:"-"` // insertion order
	Type      schedule.CommunicationType `json:"type"`
	Date      time.Time                  `json:"date"`
	Notes     string                     `json:"notes,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}

// CompanyUpdate carries a partial update; nil fields are left unchanged.
type CompanyUpdate struct {
	Name                     *string
	Location                 *string
	LinkedInProfile          *string
	Emails                   []string
	PhoneNumbers             []string
	Comments                 *string
	CommunicationPeriodicity *string
}

// CompanyFilters holds optional filters for listing companies
type CompanyFilters struct {
	Search string // case-insensitive substring of the name
	Limit  int    // 0 means no limit
	Offset int
}

// Event converts the communication into the scheduler's input form.
func (c Communication) Event() schedule.Event {
	return schedule.Event{Type: c.Type, Date: c.Date, Notes: c.Notes}
}

// Events returns the company's communications in insertion order as scheduler events.
func (c *Company) Events() []schedule.Event {
	events := make([]schedule.Event, len(c.Communications))
	for i, comm := range c.Communications {
		events[i] = comm.Event()
	}
	return events
}

// Schedule computes the company's follow-up status as of now.
func (c *Company) Schedule(now time.Time) (schedule.Status, error) {
	return schedule.ComputeFromString(c.Events(), c.CommunicationPeriodicity, now)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeName converts a company name to a normalized form for matching
// Example: "Affirm, Inc." -> "affirminc"
func NormalizeName(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
}

// cleanList trims entries, drops empty ones and removes duplicates while keeping order.
// It never returns nil so array columns are written as '{}' rather than NULL.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// normalizeEmails lowercases and cleans a list of email addresses.
func normalizeEmails(emails []string) []string {
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(e)
	}
	return cleanList(lowered)
}
