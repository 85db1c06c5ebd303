package memory

import (
	"context"
	"time"

	"beaconcms.org/internal/cms"
)

type leadStore struct{ s *Store }

func (l leadStore) view(lead cms.Lead) cms.Lead {
	lead.AssigneeName = l.s.userName(lead.AssignedTo)
	return lead
}

func (l leadStore) List(_ context.Context, f cms.LeadFilter) ([]cms.Lead, int, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	var out []cms.Lead
	for _, lead := range l.s.leads {
		if f.Status != "" && lead.Status != f.Status {
			continue
		}
		if f.AssignedTo != "" && deref(lead.AssignedTo) != f.AssignedTo {
			continue
		}
		if f.Search != "" && !contains(lead.Name, f.Search) && !contains(lead.Email, f.Search) && !contains(deref(lead.Company), f.Search) {
			continue
		}
		out = append(out, l.view(lead))
	}
	newestFirst(out, func(x cms.Lead) time.Time { return x.CreatedAt }, func(x cms.Lead) string { return x.ID })
	return page(out, f.Paging), len(out), nil
}

func (l leadStore) Get(_ context.Context, id string) (cms.Lead, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	lead, ok := l.s.leads[id]
	if !ok {
		return cms.Lead{}, cms.ErrNotFound
	}
	return l.view(lead), nil
}

func (l leadStore) Create(_ context.Context, lead *cms.Lead) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, ok := l.s.leads[lead.ID]; ok {
		return cms.ErrConflict
	}
	if lead.AssignedTo != nil {
		if _, ok := l.s.users[*lead.AssignedTo]; !ok {
			return cms.ErrNotFound
		}
	}
	l.s.leads[lead.ID] = *lead
	return nil
}

func (l leadStore) Update(_ context.Context, lead *cms.Lead) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, ok := l.s.leads[lead.ID]; !ok {
		return cms.ErrNotFound
	}
	stored := *lead
	stored.AssigneeName = nil
	l.s.leads[lead.ID] = stored
	return nil
}

func (l leadStore) Delete(_ context.Context, id string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, ok := l.s.leads[id]; !ok {
		return cms.ErrNotFound
	}
	delete(l.s.leads, id)
	return nil
}
