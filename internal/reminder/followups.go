// Package reminder finds companies that need a follow-up and sweeps for them on a schedule.
package reminder

import (
	"cmp"
	"slices"
	"time"

	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/types"
)

// FollowUps evaluates every company at now and returns those selected by filter,
// ordered by due date (earliest first, then by name). Companies whose history cannot be
// scheduled are passed to onError, when set, and left out.
func FollowUps(companies []db.Company, now time.Time, filter types.FollowUpFilter, onError func(*db.Company, error)) []types.FollowUp {
	out := make([]types.FollowUp, 0)
	for i := range companies {
		c := &companies[i]
		status, err := c.Schedule(now)
		if err != nil {
			if onError != nil {
				onError(c, err)
			}
			continue
		}
		if !filter.Matches(status) {
			continue
		}
		out = append(out, types.FollowUp{
			CompanyID:     c.ID,
			CompanyName:   c.Name,
			IsOverdue:     status.IsOverdue,
			IsDueToday:    status.IsDueToday,
			NextScheduled: status.NextScheduled,
		})
	}

	slices.SortStableFunc(out, func(a, b types.FollowUp) int {
		// a selected company always has a last communication, so NextScheduled is set
		if c := a.NextScheduled.Date.Compare(b.NextScheduled.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.CompanyName, b.CompanyName)
	})
	return out
}
