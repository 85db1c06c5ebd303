package auth

// Permission strings are flat "<area>:<verb>" pairs compared by equality.
const (
	PermDashboardView = "dashboard:view"

	PermLeadsView   = "leads:view"
	PermLeadsCreate = "leads:create"
	PermLeadsEdit   = "leads:edit"
	PermLeadsDelete = "leads:delete"
	PermLeadsAssign = "leads:assign"

	PermBlogView    = "blog:view"
	PermBlogCreate  = "blog:create"
	PermBlogEdit    = "blog:edit"
	PermBlogDelete  = "blog:delete"
	PermBlogPublish = "blog:publish"

	PermJobsView    = "jobs:view"
	PermJobsCreate  = "jobs:create"
	PermJobsEdit    = "jobs:edit"
	PermJobsDelete  = "jobs:delete"
	PermJobsPublish = "jobs:publish"

	PermApplicationsView   = "applications:view"
	PermApplicationsEdit   = "applications:edit"
	PermApplicationsDelete = "applications:delete"

	PermUsersView   = "users:view"
	PermUsersCreate = "users:create"
	PermUsersEdit   = "users:edit"
	PermUsersDelete = "users:delete"

	PermMediaView   = "media:view"
	PermMediaUpload = "media:upload"
	PermMediaDelete = "media:delete"

	PermSettingsView = "settings:view"
	PermSettingsEdit = "settings:edit"

	PermContentView = "content:view"
	PermContentEdit = "content:edit"

	PermAuditView = "audit:view"
)

// Permission describes one entry of the catalog.
type Permission struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// Catalog lists every permission the admin API checks, in display order.
var Catalog = []Permission{
	{Key: PermDashboardView, Description: "View dashboard statistics"},
	{Key: PermLeadsView, Description: "View leads"},
	{Key: PermLeadsCreate, Description: "Create leads"},
	{Key: PermLeadsEdit, Description: "Edit leads"},
	{Key: PermLeadsDelete, Description: "Delete leads"},
	{Key: PermLeadsAssign, Description: "Assign leads to users"},
	{Key: PermBlogView, Description: "View blog posts"},
	{Key: PermBlogCreate, Description: "Create blog posts"},
	{Key: PermBlogEdit, Description: "Edit blog posts"},
	{Key: PermBlogDelete, Description: "Delete blog posts"},
	{Key: PermBlogPublish, Description: "Publish blog posts"},
	{Key: PermJobsView, Description: "View job postings"},
	{Key: PermJobsCreate, Description: "Create job postings"},
	{Key: PermJobsEdit, Description: "Edit job postings"},
	{Key: PermJobsDelete, Description: "Delete job postings"},
	{Key: PermJobsPublish, Description: "Publish job postings"},
	{Key: PermApplicationsView, Description: "View job applications"},
	{Key: PermApplicationsEdit, Description: "Edit job applications"},
	{Key: PermApplicationsDelete, Description: "Delete job applications"},
	{Key: PermUsersView, Description: "View users"},
	{Key: PermUsersCreate, Description: "Create users"},
	{Key: PermUsersEdit, Description: "Edit users"},
	{Key: PermUsersDelete, Description: "Delete users"},
	{Key: PermMediaView, Description: "View media library"},
	{Key: PermMediaUpload, Description: "Upload media"},
	{Key: PermMediaDelete, Description: "Delete media"},
	{Key: PermSettingsView, Description: "View site settings"},
	{Key: PermSettingsEdit, Description: "Edit site settings"},
	{Key: PermContentView, Description: "View page content"},
	{Key: PermContentEdit, Description: "Edit page content"},
	{Key: PermAuditView, Description: "View audit logs"},
}

// IsKnownPermission reports whether key is part of the catalog.
func IsKnownPermission(key string) bool {
	for _, p := range Catalog {
		if p.Key == key {
			return true
		}
	}
	return false
}
