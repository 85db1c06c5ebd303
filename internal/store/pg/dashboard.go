package pg

import (
	"context"
	"time"

	"beaconcms.org/internal/cms"
)

func (s *Store) DashboardCounts(ctx context.Context, monthStart, prevMonthStart time.Time) (cms.DashboardCounts, error) {
	c := cms.DashboardCounts{LeadsByStatus: map[string]int{}}

	var leads struct {
		Total     int `db:"total"`
		Won       int `db:"won"`
		New       int `db:"new"`
		ThisMonth int `db:"this_month"`
		LastMonth int `db:"last_month"`
	}
	if err := s.db.GetContext(ctx, &leads, `
		select count(*) as total,
		       count(*) filter (where status = 'won') as won,
		       count(*) filter (where status = 'new') as new,
		       count(*) filter (where created_at >= $1) as this_month,
		       count(*) filter (where created_at >= $2 and created_at < $1) as last_month
		from leads
	`, monthStart, prevMonthStart); err != nil {
		return c, err
	}
	c.TotalLeads, c.WonLeads, c.NewLeads = leads.Total, leads.Won, leads.New
	c.LeadsThisMonth, c.LeadsLastMonth = leads.ThisMonth, leads.LastMonth

	var byStatus []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &byStatus, `select status, count(*) as n from leads group by status`); err != nil {
		return c, err
	}
	for _, row := range byStatus {
		c.LeadsByStatus[row.Status] = row.N
	}

	var content struct {
		Published int `db:"published"`
		Draft     int `db:"draft"`
		OpenJobs  int `db:"open_jobs"`
		Apps      int `db:"apps"`
		NewApps   int `db:"new_apps"`
	}
	if err := s.db.GetContext(ctx, &content, `
		select (select count(*) from blog_posts where status = 'published') as published,
		       (select count(*) from blog_posts where status = 'draft') as draft,
		       (select count(*) from jobs where status = 'published') as open_jobs,
		       (select count(*) from job_applications) as apps,
		       (select count(*) from job_applications where status = 'new') as new_apps
	`); err != nil {
		return c, err
	}
	c.PublishedPosts, c.DraftPosts, c.OpenJobs = content.Published, content.Draft, content.OpenJobs
	c.TotalApplications, c.NewApplications = content.Apps, content.NewApps

	c.RecentLeads = []cms.Lead{}
	err := s.db.SelectContext(ctx, &c.RecentLeads,
		"select "+leadColumns+" from "+leadFrom+" order by l.created_at desc, l.id desc limit $1", cms.RecentLeadCount)
	return c, err
}
