package cms

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"beaconcms.org/internal/auth"
)

var hundred = decimal.NewFromInt(100)

// Percentage returns num/den*100 to one decimal place, or "0" when den is zero.
func Percentage(num, den int) string {
	if den == 0 {
		return "0"
	}
	return decimal.NewFromInt(int64(num)).
		Div(decimal.NewFromInt(int64(den))).
		Mul(hundred).
		StringFixed(1)
}

// GrowthRate is the period-over-period change in percent. Growth from zero is
// "100" when anything happened and "0" otherwise.
func GrowthRate(current, previous int) string {
	if previous == 0 {
		if current > 0 {
			return "100"
		}
		return "0"
	}
	return Percentage(current-previous, previous)
}

type Stats struct {
	TotalLeads        int            `json:"totalLeads"`
	NewLeads          int            `json:"newLeads"`
	WonLeads          int            `json:"wonLeads"`
	ConversionRate    string         `json:"conversionRate"`
	LeadsThisMonth    int            `json:"leadsThisMonth"`
	LeadsLastMonth    int            `json:"leadsLastMonth"`
	LeadGrowth        string         `json:"leadGrowth"`
	LeadsByStatus     map[string]int `json:"leadsByStatus"`
	PublishedPosts    int            `json:"publishedPosts"`
	DraftPosts        int            `json:"draftPosts"`
	OpenJobs          int            `json:"openJobs"`
	TotalApplications int            `json:"totalApplications"`
	NewApplications   int            `json:"newApplications"`
	RecentLeads       []Lead         `json:"recentLeads"`
}

// Stats summarizes leads, content and hiring for the dashboard.
func (s *Service) Stats(ctx context.Context, actor auth.Principal) (Stats, error) {
	if err := auth.Require(actor, auth.PermDashboardView); err != nil {
		return Stats{}, err
	}
	monthStart, prevStart := monthBounds(s.now())
	c, err := s.store.DashboardCounts(ctx, monthStart, prevStart)
	if err != nil {
		return Stats{}, err
	}
	byStatus := make(map[string]int, len(leadStatuses))
	for _, st := range leadStatuses {
		byStatus[st] = c.LeadsByStatus[st]
	}
	recent := c.RecentLeads
	if recent == nil {
		recent = []Lead{}
	}
	return Stats{
		TotalLeads:        c.TotalLeads,
		NewLeads:          c.NewLeads,
		WonLeads:          c.WonLeads,
		ConversionRate:    Percentage(c.WonLeads, c.TotalLeads),
		LeadsThisMonth:    c.LeadsThisMonth,
		LeadsLastMonth:    c.LeadsLastMonth,
		LeadGrowth:        GrowthRate(c.LeadsThisMonth, c.LeadsLastMonth),
		LeadsByStatus:     byStatus,
		PublishedPosts:    c.PublishedPosts,
		DraftPosts:        c.DraftPosts,
		OpenJobs:          c.OpenJobs,
		TotalApplications: c.TotalApplications,
		NewApplications:   c.NewApplications,
		RecentLeads:       recent,
	}, nil
}

// monthBounds returns the UTC start of the current and the previous calendar month.
func monthBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, -1, 0)
}
