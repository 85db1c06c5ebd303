package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"beaconcms.org/internal/ids"
	"beaconcms.org/internal/obs"
)

// Action is what happened to an entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

// Valid reports whether a is one of the recorded actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionLogout:
		return true
	}
	return false
}

// Entry is one append-only audit row.
type Entry struct {
	ID         string          `json:"id" db:"id"`
	UserID     *string         `json:"userId" db:"user_id"`
	UserName   *string         `json:"userName,omitempty" db:"user_name"`
	Action     Action          `json:"action" db:"action"`
	EntityType string          `json:"entityType" db:"entity_type"`
	EntityID   string          `json:"entityId" db:"entity_id"`
	OldValue   json.RawMessage `json:"oldValue" db:"-"`
	NewValue   json.RawMessage `json:"newValue" db:"-"`
	IPAddress  string          `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent  string          `json:"userAgent,omitempty" db:"user_agent"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// Event is the input to Record. ActorID is empty for anonymous (public) writes.
type Event struct {
	ActorID    string
	Action     Action
	EntityType string
	EntityID   string
	OldValue   any
	NewValue   any
}

// Store persists audit entries.
type Store interface {
	AppendAudit(ctx context.Context, entry *Entry) error
	ListAudit(ctx context.Context, filter Filter) ([]Entry, int, error)
}

type ctxKey struct{}

// RequestMeta describes the client behind the current request.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// WithRequestMeta attaches client metadata so entries written during the request carry it.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	meta.RequestID = strings.TrimSpace(meta.RequestID)
	meta.IPAddress = strings.TrimSpace(meta.IPAddress)
	if len(meta.UserAgent) > 512 {
		meta.UserAgent = meta.UserAgent[:512]
	}
	return context.WithValue(ctx, ctxKey{}, meta)
}

// RequestMetaFromContext returns metadata attached by WithRequestMeta.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if ctx == nil {
		return RequestMeta{}
	}
	meta, _ := ctx.Value(ctxKey{}).(RequestMeta)
	return meta
}

// Recorder writes audit entries on a best-effort basis.
type Recorder struct {
	store Store
	now   func() time.Time
}

// NewRecorder constructs a Recorder backed by store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// WithClock overrides the time source.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	if now != nil {
		r.now = now
	}
	return r
}

// Record appends an entry for ev. A failed write is logged and counted but never returned:
// the mutation it describes has already succeeded.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if r == nil || r.store == nil {
		return
	}
	meta := RequestMetaFromContext(ctx)
	entry := &Entry{
		ID:         ids.New(),
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		OldValue:   snapshot(ev.OldValue),
		NewValue:   snapshot(ev.NewValue),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		CreatedAt:  r.now().UTC(),
	}
	if actor := strings.TrimSpace(ev.ActorID); actor != "" {
		entry.UserID = &actor
	}

	fields := []zap.Field{
		zap.String("request_id", meta.RequestID),
		zap.String("action", string(ev.Action)),
		zap.String("entity_type", ev.EntityType),
		zap.String("entity_id", ev.EntityID),
	}
	if err := r.store.AppendAudit(ctx, entry); err != nil {
		obs.AuditWriteFailed()
		obs.Logger().Warn("audit write failed", append(fields, zap.Error(err))...)
		return
	}
	obs.Logger().Debug("audit", fields...)
}

func snapshot(v any) json.RawMessage {
	switch t := v.(type) {
	case nil:
		return nil
	case json.RawMessage:
		if len(t) == 0 {
			return nil
		}
		return t
	}
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return nil
	}
	return data
}
