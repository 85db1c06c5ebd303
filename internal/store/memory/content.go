package memory

import (
	"context"
	"encoding/json"
	"sort"

	"beaconcms.org/internal/cms"
)

type contentStore struct{ s *Store }

func cloneContent(c cms.Content) cms.Content {
	c.Data = append(json.RawMessage(nil), c.Data...)
	return c
}

func (cs contentStore) List(_ context.Context, page string) ([]cms.Content, error) {
	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()
	out := []cms.Content{}
	for _, c := range cs.s.content {
		if page != "" && c.Page != page {
			continue
		}
		out = append(out, cloneContent(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Section < out[j].Section
	})
	return out, nil
}

func (cs contentStore) Get(_ context.Context, id string) (cms.Content, error) {
	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()
	c, ok := cs.s.content[id]
	if !ok {
		return cms.Content{}, cms.ErrNotFound
	}
	return cloneContent(c), nil
}

func (cs contentStore) GetBySection(_ context.Context, page, section string) (cms.Content, error) {
	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()
	for _, c := range cs.s.content {
		if c.Page == page && c.Section == section {
			return cloneContent(c), nil
		}
	}
	return cms.Content{}, cms.ErrNotFound
}

func (cs contentStore) Create(_ context.Context, c *cms.Content) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	if _, ok := cs.s.content[c.ID]; ok {
		return cms.ErrConflict
	}
	for _, existing := range cs.s.content {
		if existing.Page == c.Page && existing.Section == c.Section {
			return cms.ErrConflict
		}
	}
	cs.s.content[c.ID] = cloneContent(*c)
	return nil
}

func (cs contentStore) Update(_ context.Context, c *cms.Content) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	if _, ok := cs.s.content[c.ID]; !ok {
		return cms.ErrNotFound
	}
	cs.s.content[c.ID] = cloneContent(*c)
	return nil
}

func (cs contentStore) Delete(_ context.Context, id string) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	if _, ok := cs.s.content[id]; !ok {
		return cms.ErrNotFound
	}
	delete(cs.s.content, id)
	return nil
}
