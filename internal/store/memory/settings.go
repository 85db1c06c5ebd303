package memory

import (
	"context"
	"sort"

	"beaconcms.org/internal/cms"
)

type settingStore struct{ s *Store }

func (st settingStore) List(_ context.Context) ([]cms.Setting, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	out := make([]cms.Setting, 0, len(st.s.settings))
	for _, setting := range st.s.settings {
		out = append(out, setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (st settingStore) Get(_ context.Context, key string) (cms.Setting, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	setting, ok := st.s.settings[key]
	if !ok {
		return cms.Setting{}, cms.ErrNotFound
	}
	return setting, nil
}

func (st settingStore) Create(_ context.Context, setting *cms.Setting) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if _, ok := st.s.settings[setting.Key]; ok {
		return cms.ErrConflict
	}
	st.s.settings[setting.Key] = *setting
	return nil
}

func (st settingStore) Update(_ context.Context, setting *cms.Setting) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if _, ok := st.s.settings[setting.Key]; !ok {
		return cms.ErrNotFound
	}
	st.s.settings[setting.Key] = *setting
	return nil
}

func (st settingStore) Delete(_ context.Context, key string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if _, ok := st.s.settings[key]; !ok {
		return cms.ErrNotFound
	}
	delete(st.s.settings, key)
	return nil
}
