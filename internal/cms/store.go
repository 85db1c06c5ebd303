package cms

import (
	"context"
	"time"
)

// Store is the persistence port. Lookups return ErrNotFound for missing rows and
// writes return ErrConflict when a unique column collides.
type Store interface {
	Leads() LeadStore
	Posts() PostStore
	Jobs() JobStore
	Applications() ApplicationStore
	Users() UserStore
	Media() MediaStore
	Settings() SettingStore
	Content() ContentStore

	DashboardCounts(ctx context.Context, monthStart, prevMonthStart time.Time) (DashboardCounts, error)
}

type LeadFilter struct {
	Status     string
	AssignedTo string
	Search     string
	Paging
}

type LeadStore interface {
	List(ctx context.Context, f LeadFilter) ([]Lead, int, error)
	Get(ctx context.Context, id string) (Lead, error)
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id string) error
}

type PostFilter struct {
	Status   string
	Category string
	Paging
}

type PostStore interface {
	List(ctx context.Context, f PostFilter) ([]BlogPost, int, error)
	Get(ctx context.Context, id string) (BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (BlogPost, error)
	Create(ctx context.Context, post *BlogPost) error
	Update(ctx context.Context, post *BlogPost) error
	Delete(ctx context.Context, id string) error
}

type JobFilter struct {
	Status     string
	Department string
	Paging
}

type JobStore interface {
	List(ctx context.Context, f JobFilter) ([]Job, int, error)
	Get(ctx context.Context, id string) (Job, error)
	GetBySlug(ctx context.Context, slug string) (Job, error)
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id string) error
}

type ApplicationFilter struct {
	JobID  string
	Status string
	Paging
}

type ApplicationStore interface {
	List(ctx context.Context, f ApplicationFilter) ([]JobApplication, int, error)
	Get(ctx context.Context, id string) (JobApplication, error)
	Create(ctx context.Context, app *JobApplication) error
	Update(ctx context.Context, app *JobApplication) error
	Delete(ctx context.Context, id string) error
}

type UserFilter struct {
	Role string
	Paging
}

// UserChanges holds the columns an update touches; nil fields are left alone.
type UserChanges struct {
	Email        *string
	Name         *string
	Role         *string
	IsActive     *bool
	PasswordHash *string
	UpdatedAt    time.Time
}

type UserStore interface {
	List(ctx context.Context, f UserFilter) ([]User, int, error)
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, id string, ch UserChanges) error
	Delete(ctx context.Context, id string) error
}

type MediaFilter struct {
	MimePrefix string
	Paging
}

type MediaStore interface {
	List(ctx context.Context, f MediaFilter) ([]Media, int, error)
	Get(ctx context.Context, id string) (Media, error)
	Create(ctx context.Context, m *Media) error
	UpdateAltText(ctx context.Context, id string, alt *string) error
	Delete(ctx context.Context, id string) error
}

type SettingStore interface {
	List(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (Setting, error)
	Create(ctx context.Context, s *Setting) error
	Update(ctx context.Context, s *Setting) error
	Delete(ctx context.Context, key string) error
}

type ContentStore interface {
	List(ctx context.Context, page string) ([]Content, error)
	Get(ctx context.Context, id string) (Content, error)
	GetBySection(ctx context.Context, page, section string) (Content, error)
	Create(ctx context.Context, c *Content) error
	Update(ctx context.Context, c *Content) error
	Delete(ctx context.Context, id string) error
}

// RecentLeadCount is how many of the newest leads the dashboard shows.
const RecentLeadCount = 5

// DashboardCounts are the raw numbers behind Stats.
type DashboardCounts struct {
	TotalLeads        int
	WonLeads          int
	NewLeads          int
	LeadsThisMonth    int
	LeadsLastMonth    int
	LeadsByStatus     map[string]int
	PublishedPosts    int
	DraftPosts        int
	OpenJobs          int
	TotalApplications int
	NewApplications   int
	RecentLeads       []Lead
}
