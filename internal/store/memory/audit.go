package memory

import (
	"context"
	"time"

	"beaconcms.org/internal/audit"
)

func (s *Store) AppendAudit(_ context.Context, e *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *Store) ListAudit(_ context.Context, f audit.Filter) ([]audit.Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Entry
	for _, e := range s.entries {
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.UserID != "" && deref(e.UserID) != f.UserID {
			continue
		}
		e.UserName = s.userName(e.UserID)
		out = append(out, e)
	}
	newestFirst(out, func(x audit.Entry) time.Time { return x.CreatedAt }, func(x audit.Entry) string { return x.ID })
	total := len(out)
	if f.Limit <= 0 {
		return out, total, nil
	}
	start := (f.Page - 1) * f.Limit
	if f.Page < 1 || start >= total {
		return []audit.Entry{}, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

// AuditEntries returns every entry in insertion order.
func (s *Store) AuditEntries() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Entry(nil), s.entries...)
}
