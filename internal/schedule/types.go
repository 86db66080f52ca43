// Package schedule computes communication follow-up status for a company from its
// recorded communications and periodicity.
//
// Everything here is a pure function of its inputs. The caller supplies "now"; nothing in
// this package reads the system clock.
package schedule

import "time"

// CommunicationType identifies the channel of a recorded communication.
type CommunicationType string

// Communication types. Values match the strings stored and sent over the wire.
const (
	LinkedInPost    CommunicationType = "LinkedIn Post"
	LinkedInMessage CommunicationType = "LinkedIn Message"
	Email           CommunicationType = "Email"
	PhoneCall       CommunicationType = "Phone Call"
	Other           CommunicationType = "Other"
)

// AllTypes lists every valid communication type in display order.
var AllTypes = []CommunicationType{LinkedInPost, LinkedInMessage, Email, PhoneCall, Other}

// Valid reports whether t is one of the known communication types.
func (t CommunicationType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Event is a single recorded communication with a company.
type Event struct {
	Type  CommunicationType `json:"type"`
	Date  time.Time         `json:"date"`
	Notes string            `json:"notes,omitempty"`
}

// Next is the projected next communication.
type Next struct {
	Type CommunicationType `json:"type"`
	Date time.Time         `json:"date"`
}

// Status is the derived follow-up state of a company. It is never stored.
type Status struct {
	LastFive      []Event `json:"last_five"`
	IsOverdue     bool    `json:"is_overdue"`
	IsDueToday    bool    `json:"is_due_today"`
	NextScheduled *Next   `json:"next_scheduled"`
}

// NeedsFollowUp reports whether the company is overdue or due today.
func (s Status) NeedsFollowUp() bool {
	return s.IsOverdue || s.IsDueToday
}
