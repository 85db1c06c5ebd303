package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/revalidate"
)

// PublicSettingKeys are the only settings exposed to anonymous clients.
var PublicSettingKeys = []string{
	"site_title",
	"site_description",
	"company_name",
	"company_email",
	"company_phone",
	"company_address",
	"social_links",
	"feature_flags",
	"maintenance_mode",
}

type SettingInput struct {
	Key   string          `json:"key" validate:"required,max=100,settingkey"`
	Value json.RawMessage `json:"value"`
}

type SettingPatch struct {
	Value json.RawMessage `json:"value"`
}

func (s *Service) ListSettings(ctx context.Context, actor auth.Principal) ([]Setting, error) {
	if err := auth.Require(actor, auth.PermSettingsView); err != nil {
		return nil, err
	}
	items, err := s.store.Settings().List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Setting{}
	}
	return items, nil
}

func (s *Service) GetSetting(ctx context.Context, actor auth.Principal, key string) (Setting, error) {
	if err := auth.Require(actor, auth.PermSettingsView); err != nil {
		return Setting{}, err
	}
	setting, err := s.store.Settings().Get(ctx, key)
	return setting, lookup(err, "Setting")
}

// PublicSettings returns the allow-listed settings keyed by name with their decoded JSON values.
func (s *Service) PublicSettings(ctx context.Context) (map[string]json.RawMessage, error) {
	items, err := s.store.Settings().List(ctx)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(PublicSettingKeys))
	for _, k := range PublicSettingKeys {
		allowed[k] = struct{}{}
	}
	out := make(map[string]json.RawMessage)
	for _, item := range items {
		if _, ok := allowed[item.Key]; !ok {
			continue
		}
		if json.Valid([]byte(item.Value)) {
			out[item.Key] = json.RawMessage(item.Value)
		}
	}
	return out, nil
}

func (s *Service) CreateSetting(ctx context.Context, actor auth.Principal, in SettingInput) (string, error) {
	if err := auth.Require(actor, auth.PermSettingsEdit); err != nil {
		return "", err
	}
	if err := checkInput(in); err != nil {
		return "", err
	}
	value, err := settingValue(in.Value)
	if err != nil {
		return "", err
	}
	if _, err := s.store.Settings().Get(ctx, in.Key); err == nil {
		return "", conflict("A setting with this key already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	actorID := actor.ID
	setting := Setting{Key: in.Key, Value: value, UpdatedBy: &actorID, UpdatedAt: s.timestamp()}
	if err := s.store.Settings().Create(ctx, &setting); err != nil {
		if errors.Is(err, ErrConflict) {
			return "", conflict("A setting with this key already exists")
		}
		return "", err
	}
	s.record(ctx, actor.ID, audit.ActionCreate, EntitySetting, setting.Key, nil, map[string]any{
		"value": json.RawMessage(value),
	})
	s.invalidate(ctx, revalidate.SettingsPaths()...)
	return setting.Key, nil
}

func (s *Service) UpdateSetting(ctx context.Context, actor auth.Principal, key string, p SettingPatch) (Setting, error) {
	if err := auth.Require(actor, auth.PermSettingsEdit); err != nil {
		return Setting{}, err
	}
	value, err := settingValue(p.Value)
	if err != nil {
		return Setting{}, err
	}
	current, err := s.store.Settings().Get(ctx, key)
	if err != nil {
		return Setting{}, lookup(err, "Setting")
	}
	actorID := actor.ID
	next := current
	next.Value = value
	next.UpdatedBy = &actorID
	next.UpdatedAt = s.timestamp()
	if err := s.store.Settings().Update(ctx, &next); err != nil {
		return Setting{}, lookup(err, "Setting")
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntitySetting, key,
		map[string]any{"value": rawOrString(current.Value)},
		map[string]any{"value": json.RawMessage(value)})
	s.invalidate(ctx, revalidate.SettingsPaths()...)
	return next, nil
}

func (s *Service) DeleteSetting(ctx context.Context, actor auth.Principal, key string) error {
	if err := auth.Require(actor, auth.PermSettingsEdit); err != nil {
		return err
	}
	current, err := s.store.Settings().Get(ctx, key)
	if err != nil {
		return lookup(err, "Setting")
	}
	if err := s.store.Settings().Delete(ctx, key); err != nil {
		return lookup(err, "Setting")
	}
	s.record(ctx, actor.ID, audit.ActionDelete, EntitySetting, key,
		map[string]any{"value": rawOrString(current.Value)}, nil)
	s.invalidate(ctx, revalidate.SettingsPaths()...)
	return nil
}

// settingValue compacts a JSON value into its stored text form.
func settingValue(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", invalid("value is required")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", invalid("value must be valid JSON")
	}
	return buf.String(), nil
}

func rawOrString(v string) any {
	if json.Valid([]byte(v)) {
		return json.RawMessage(v)
	}
	return v
}
