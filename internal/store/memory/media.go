package memory

import (
	"context"
	"strings"
	"time"

	"beaconcms.org/internal/cms"
)

type mediaStore struct{ s *Store }

func (m mediaStore) view(item cms.Media) cms.Media {
	item.UploaderName = m.s.userName(item.UploadedBy)
	return item
}

func (m mediaStore) List(_ context.Context, f cms.MediaFilter) ([]cms.Media, int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []cms.Media
	for _, item := range m.s.media {
		if f.MimePrefix != "" && !strings.HasPrefix(item.MimeType, f.MimePrefix) {
			continue
		}
		out = append(out, m.view(item))
	}
	newestFirst(out, func(x cms.Media) time.Time { return x.CreatedAt }, func(x cms.Media) string { return x.ID })
	return page(out, f.Paging), len(out), nil
}

func (m mediaStore) Get(_ context.Context, id string) (cms.Media, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	item, ok := m.s.media[id]
	if !ok {
		return cms.Media{}, cms.ErrNotFound
	}
	return m.view(item), nil
}

func (m mediaStore) Create(_ context.Context, item *cms.Media) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.media[item.ID]; ok {
		return cms.ErrConflict
	}
	for _, existing := range m.s.media {
		if existing.StorageKey == item.StorageKey {
			return cms.ErrConflict
		}
	}
	stored := *item
	stored.UploaderName = nil
	m.s.media[item.ID] = stored
	return nil
}

func (m mediaStore) UpdateAltText(_ context.Context, id string, alt *string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	item, ok := m.s.media[id]
	if !ok {
		return cms.ErrNotFound
	}
	item.AltText = alt
	m.s.media[id] = item
	return nil
}

func (m mediaStore) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.media[id]; !ok {
		return cms.ErrNotFound
	}
	delete(m.s.media, id)
	return nil
}
