package memory

import (
	"context"
	"time"

	"beaconcms.org/internal/cms"
)

type appStore struct{ s *Store }

func (a appStore) view(app cms.JobApplication) cms.JobApplication {
	app.JobTitle = nil
	if job, ok := a.s.jobs[app.JobID]; ok {
		title := job.Title
		app.JobTitle = &title
	}
	return app
}

func (a appStore) List(_ context.Context, f cms.ApplicationFilter) ([]cms.JobApplication, int, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	var out []cms.JobApplication
	for _, app := range a.s.apps {
		if f.JobID != "" && app.JobID != f.JobID {
			continue
		}
		if f.Status != "" && app.Status != f.Status {
			continue
		}
		out = append(out, a.view(app))
	}
	newestFirst(out, func(x cms.JobApplication) time.Time { return x.CreatedAt }, func(x cms.JobApplication) string { return x.ID })
	return page(out, f.Paging), len(out), nil
}

func (a appStore) Get(_ context.Context, id string) (cms.JobApplication, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	app, ok := a.s.apps[id]
	if !ok {
		return cms.JobApplication{}, cms.ErrNotFound
	}
	return a.view(app), nil
}

func (a appStore) Create(_ context.Context, app *cms.JobApplication) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.apps[app.ID]; ok {
		return cms.ErrConflict
	}
	if _, ok := a.s.jobs[app.JobID]; !ok {
		return cms.ErrNotFound
	}
	stored := *app
	stored.JobTitle = nil
	a.s.apps[app.ID] = stored
	return nil
}

func (a appStore) Update(_ context.Context, app *cms.JobApplication) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.apps[app.ID]; !ok {
		return cms.ErrNotFound
	}
	stored := *app
	stored.JobTitle = nil
	a.s.apps[app.ID] = stored
	return nil
}

func (a appStore) Delete(_ context.Context, id string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.apps[id]; !ok {
		return cms.ErrNotFound
	}
	delete(a.s.apps, id)
	return nil
}
