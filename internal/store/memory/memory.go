// Package memory is an in-process implementation of the CMS, session and audit stores.
// It backs the end-to-end tests and local runs without Postgres.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
)

var (
	_ cms.Store         = (*Store)(nil)
	_ auth.SessionStore = (*Store)(nil)
	_ audit.Store       = (*Store)(nil)
)

type Store struct {
	mu sync.RWMutex

	leads    map[string]cms.Lead
	posts    map[string]cms.BlogPost
	jobs     map[string]cms.Job
	apps     map[string]cms.JobApplication
	users    map[string]cms.User
	media    map[string]cms.Media
	settings map[string]cms.Setting
	content  map[string]cms.Content
	sessions map[string]auth.SessionRecord
	entries  []audit.Entry
}

func New() *Store {
	return &Store{
		leads:    map[string]cms.Lead{},
		posts:    map[string]cms.BlogPost{},
		jobs:     map[string]cms.Job{},
		apps:     map[string]cms.JobApplication{},
		users:    map[string]cms.User{},
		media:    map[string]cms.Media{},
		settings: map[string]cms.Setting{},
		content:  map[string]cms.Content{},
		sessions: map[string]auth.SessionRecord{},
	}
}

func (s *Store) Leads() cms.LeadStore               { return leadStore{s} }
func (s *Store) Posts() cms.PostStore               { return postStore{s} }
func (s *Store) Jobs() cms.JobStore                 { return jobStore{s} }
func (s *Store) Applications() cms.ApplicationStore { return appStore{s} }
func (s *Store) Users() cms.UserStore               { return userStore{s} }
func (s *Store) Media() cms.MediaStore              { return mediaStore{s} }
func (s *Store) Settings() cms.SettingStore         { return settingStore{s} }
func (s *Store) Content() cms.ContentStore          { return contentStore{s} }

// newestFirst orders by creation time, then id, both descending.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

func page[T any](items []T, p cms.Paging) []T {
	if p.Limit <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *Store) userName(id *string) *string {
	if id == nil {
		return nil
	}
	u, ok := s.users[*id]
	if !ok {
		return nil
	}
	name := u.Name
	return &name
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
