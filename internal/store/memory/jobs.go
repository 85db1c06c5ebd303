package memory

import (
	"context"
	"time"

	"beaconcms.org/internal/cms"
)

type jobStore struct{ s *Store }

func (j jobStore) view(job cms.Job) cms.Job {
	job.ApplicationCount = 0
	for _, app := range j.s.apps {
		if app.JobID == job.ID {
			job.ApplicationCount++
		}
	}
	return job
}

func (j jobStore) slugTaken(slug, except string) bool {
	for id, job := range j.s.jobs {
		if job.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (j jobStore) List(_ context.Context, f cms.JobFilter) ([]cms.Job, int, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	var out []cms.Job
	for _, job := range j.s.jobs {
		if f.Status != "" && job.Status != f.Status {
			continue
		}
		if f.Department != "" && job.Department != f.Department {
			continue
		}
		out = append(out, j.view(job))
	}
	newestFirst(out, func(x cms.Job) time.Time { return x.CreatedAt }, func(x cms.Job) string { return x.ID })
	return page(out, f.Paging), len(out), nil
}

func (j jobStore) Get(_ context.Context, id string) (cms.Job, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	job, ok := j.s.jobs[id]
	if !ok {
		return cms.Job{}, cms.ErrNotFound
	}
	return j.view(job), nil
}

func (j jobStore) GetBySlug(_ context.Context, slug string) (cms.Job, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	for _, job := range j.s.jobs {
		if job.Slug == slug {
			return j.view(job), nil
		}
	}
	return cms.Job{}, cms.ErrNotFound
}

func (j jobStore) Create(_ context.Context, job *cms.Job) error {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	if _, ok := j.s.jobs[job.ID]; ok || j.slugTaken(job.Slug, "") {
		return cms.ErrConflict
	}
	stored := *job
	stored.ApplicationCount = 0
	j.s.jobs[job.ID] = stored
	return nil
}

func (j jobStore) Update(_ context.Context, job *cms.Job) error {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	if _, ok := j.s.jobs[job.ID]; !ok {
		return cms.ErrNotFound
	}
	if j.slugTaken(job.Slug, job.ID) {
		return cms.ErrConflict
	}
	stored := *job
	stored.ApplicationCount = 0
	j.s.jobs[job.ID] = stored
	return nil
}

// Delete removes the job and its applications.
func (j jobStore) Delete(_ context.Context, id string) error {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	if _, ok := j.s.jobs[id]; !ok {
		return cms.ErrNotFound
	}
	delete(j.s.jobs, id)
	for appID, app := range j.s.apps {
		if app.JobID == id {
			delete(j.s.apps, appID)
		}
	}
	return nil
}
