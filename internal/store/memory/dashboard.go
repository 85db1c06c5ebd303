package memory

import (
	"context"
	"time"

	"beaconcms.org/internal/cms"
)

func (s *Store) DashboardCounts(_ context.Context, monthStart, prevMonthStart time.Time) (cms.DashboardCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := cms.DashboardCounts{LeadsByStatus: map[string]int{}}
	leads := make([]cms.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		c.TotalLeads++
		c.LeadsByStatus[lead.Status]++
		switch lead.Status {
		case cms.LeadWon:
			c.WonLeads++
		case cms.LeadNew:
			c.NewLeads++
		}
		switch {
		case !lead.CreatedAt.Before(monthStart):
			c.LeadsThisMonth++
		case !lead.CreatedAt.Before(prevMonthStart):
			c.LeadsLastMonth++
		}
		lead.AssigneeName = s.userName(lead.AssignedTo)
		leads = append(leads, lead)
	}
	newestFirst(leads, func(x cms.Lead) time.Time { return x.CreatedAt }, func(x cms.Lead) string { return x.ID })
	if len(leads) > cms.RecentLeadCount {
		leads = leads[:cms.RecentLeadCount]
	}
	c.RecentLeads = leads

	for _, post := range s.posts {
		switch post.Status {
		case cms.StatusPublished:
			c.PublishedPosts++
		case cms.StatusDraft:
			c.DraftPosts++
		}
	}
	for _, job := range s.jobs {
		if job.Status == cms.StatusPublished {
			c.OpenJobs++
		}
	}
	for _, app := range s.apps {
		c.TotalApplications++
		if app.Status == cms.ApplicationNew {
			c.NewApplications++
		}
	}
	return c, nil
}
