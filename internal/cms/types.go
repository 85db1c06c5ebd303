package cms

import (
	"encoding/json"
	"time"
)

const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadQualified = "qualified"
	LeadProposal  = "proposal"
	LeadWon       = "won"
	LeadLost      = "lost"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

const (
	ApplicationNew       = "new"
	ApplicationReviewing = "reviewing"
	ApplicationInterview = "interview"
	ApplicationOffered   = "offered"
	ApplicationHired     = "hired"
	ApplicationRejected  = "rejected"
)

// Entity types as written to the audit log.
const (
	EntityLead        = "lead"
	EntityPost        = "blog_post"
	EntityJob         = "job"
	EntityApplication = "job_application"
	EntityUser        = "user"
	EntityMedia       = "media"
	EntitySetting     = "setting"
	EntityContent     = "content"
)

type Lead struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Company      *string   `json:"company" db:"company"`
	Phone        *string   `json:"phone" db:"phone"`
	Message      *string   `json:"message" db:"message"`
	Source       string    `json:"source" db:"source"`
	Status       string    `json:"status" db:"status"`
	AssignedTo   *string   `json:"assignedTo" db:"assigned_to"`
	AssigneeName *string   `json:"assigneeName" db:"assignee_name"`
	Notes        *string   `json:"notes" db:"notes"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type BlogPost struct {
	ID             string     `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Slug           string     `json:"slug" db:"slug"`
	Excerpt        *string    `json:"excerpt" db:"excerpt"`
	Content        string     `json:"content" db:"content"`
	CoverImage     *string    `json:"coverImage" db:"cover_image"`
	Category       *string    `json:"category" db:"category"`
	Tags           []string   `json:"tags" db:"-"`
	Status         string     `json:"status" db:"status"`
	AuthorID       *string    `json:"authorId" db:"author_id"`
	AuthorName     *string    `json:"authorName" db:"author_name"`
	SEOTitle       *string    `json:"seoTitle" db:"seo_title"`
	SEODescription *string    `json:"seoDescription" db:"seo_description"`
	PublishedAt    *time.Time `json:"publishedAt" db:"published_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

type Job struct {
	ID               string     `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	Slug             string     `json:"slug" db:"slug"`
	Department       string     `json:"department" db:"department"`
	Location         string     `json:"location" db:"location"`
	EmploymentType   string     `json:"employmentType" db:"employment_type"`
	Description      string     `json:"description" db:"description"`
	Requirements     *string    `json:"requirements" db:"requirements"`
	SalaryRange      *string    `json:"salaryRange" db:"salary_range"`
	Status           string     `json:"status" db:"status"`
	PublishedAt      *time.Time `json:"publishedAt" db:"published_at"`
	ApplicationCount int        `json:"applicationCount" db:"application_count"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

type JobApplication struct {
	ID          string    `json:"id" db:"id"`
	JobID       string    `json:"jobId" db:"job_id"`
	JobTitle    *string   `json:"jobTitle" db:"job_title"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone" db:"phone"`
	ResumeURL   *string   `json:"resumeUrl" db:"resume_url"`
	LinkedInURL *string   `json:"linkedinUrl" db:"linkedin_url"`
	CoverLetter *string   `json:"coverLetter" db:"cover_letter"`
	Status      string    `json:"status" db:"status"`
	Notes       *string   `json:"notes" db:"notes"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	Role         string     `json:"role" db:"role"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	PasswordHash string     `json:"-" db:"password_hash"`
	LastLoginAt  *time.Time `json:"lastLoginAt" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

type Media struct {
	ID           string    `json:"id" db:"id"`
	StorageKey   string    `json:"storageKey" db:"storage_key"`
	OriginalName string    `json:"originalName" db:"original_name"`
	MimeType     string    `json:"mimeType" db:"mime_type"`
	Size         int64     `json:"size" db:"size"`
	AltText      *string   `json:"altText" db:"alt_text"`
	UploadedBy   *string   `json:"uploadedBy" db:"uploaded_by"`
	UploaderName *string   `json:"uploaderName" db:"uploader_name"`
	URL          string    `json:"url" db:"url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Setting values are stored as JSON text.
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedBy *string   `json:"updatedBy" db:"updated_by"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Content is a schema-less JSON object rendered by one section of a public page.
type Content struct {
	ID        string          `json:"id" db:"id"`
	Page      string          `json:"page" db:"page"`
	Section   string          `json:"section" db:"section"`
	Data      json.RawMessage `json:"data" db:"-"`
	UpdatedBy *string         `json:"updatedBy" db:"updated_by"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Paging selects a page of a list. Zero values mean page 1 of the default size.
type Paging struct {
	Page  int
	Limit int
}

func (p Paging) normalize() Paging {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

// Offset is the number of rows before the page.
func (p Paging) Offset() int { return (p.Page - 1) * p.Limit }

func (p Paging) result(total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
