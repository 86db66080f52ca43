package server

import (
	"time"

	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/types"
)

func toCommunicationView(c db.Communication) types.CommunicationView {
	return types.CommunicationView{
		ID:        c.ID,
		Type:      c.Type,
		Date:      c.Date,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

func toCommunicationViews(comms []db.Communication) []types.CommunicationView {
	views := make([]types.CommunicationView, len(comms))
	for i, c := range comms {
		views[i] = toCommunicationView(c)
	}
	return views
}

// toCompanyView decorates a company with its status as of now.
// Communications are included only when withHistory is set. If the history cannot be
// scheduled, the view is still filled in with a nil Schedule and the error is returned.
func toCompanyView(c *db.Company, now time.Time, withHistory bool) (types.CompanyView, error) {
	status, err := c.Schedule(now)
	view := types.CompanyView{
		ID:                       c.ID,
		Name:                     c.Name,
		Location:                 c.Location,
		LinkedInProfile:          c.LinkedInProfile,
		Emails:                   c.Emails,
		PhoneNumbers:             c.PhoneNumbers,
		Comments:                 c.Comments,
		CommunicationPeriodicity: c.CommunicationPeriodicity,
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
	}
	if withHistory {
		view.Communications = toCommunicationViews(c.Communications)
	}
	if err != nil {
		return view, err
	}
	view.Schedule = &status
	return view, nil
}
