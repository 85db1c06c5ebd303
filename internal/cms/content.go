package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/revalidate"
)

type ContentInput struct {
	Page    string          `json:"page" validate:"required,max=100,slug"`
	Section string          `json:"section" validate:"required,max=100"`
	Data    json.RawMessage `json:"data"`
}

func (s *Service) ListContent(ctx context.Context, actor auth.Principal, page string) ([]Content, error) {
	if err := auth.Require(actor, auth.PermContentView); err != nil {
		return nil, err
	}
	items, err := s.store.Content().List(ctx, strings.TrimSpace(page))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Content{}
	}
	return items, nil
}

func (s *Service) GetContent(ctx context.Context, actor auth.Principal, id string) (Content, error) {
	if err := auth.Require(actor, auth.PermContentView); err != nil {
		return Content{}, err
	}
	c, err := s.store.Content().Get(ctx, id)
	return c, lookup(err, "Content")
}

// PageContent returns every section of page keyed by section name.
func (s *Service) PageContent(ctx context.Context, page string) (map[string]json.RawMessage, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return nil, notFound("Content")
	}
	items, err := s.store.Content().List(ctx, page)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(items))
	for _, item := range items {
		out[item.Section] = item.Data
	}
	return out, nil
}

// UpsertContent writes the section identified by page and section, creating it when missing.
// It reports whether a new row was created.
func (s *Service) UpsertContent(ctx context.Context, actor auth.Principal, in ContentInput) (string, bool, error) {
	if err := auth.Require(actor, auth.PermContentEdit); err != nil {
		return "", false, err
	}
	in.Page = strings.TrimSpace(in.Page)
	in.Section = strings.TrimSpace(in.Section)
	if err := checkInput(in); err != nil {
		return "", false, err
	}
	data, err := contentData(in.Data)
	if err != nil {
		return "", false, err
	}
	actorID := actor.ID
	now := s.timestamp()

	current, err := s.store.Content().GetBySection(ctx, in.Page, in.Section)
	switch {
	case errors.Is(err, ErrNotFound):
		c := Content{
			ID:        newID(),
			Page:      in.Page,
			Section:   in.Section,
			Data:      data,
			UpdatedBy: &actorID,
			UpdatedAt: now,
		}
		if err := s.store.Content().Create(ctx, &c); err != nil {
			if errors.Is(err, ErrConflict) {
				return "", false, conflict("Content for this page section already exists")
			}
			return "", false, err
		}
		s.record(ctx, actor.ID, audit.ActionCreate, EntityContent, c.ID, nil, map[string]any{
			"page":    c.Page,
			"section": c.Section,
			"data":    c.Data,
		})
		s.invalidate(ctx, revalidate.ContentPaths(c.Page)...)
		return c.ID, true, nil
	case err != nil:
		return "", false, err
	}

	next := current
	next.Data = data
	next.UpdatedBy = &actorID
	next.UpdatedAt = now
	if err := s.store.Content().Update(ctx, &next); err != nil {
		return "", false, lookup(err, "Content")
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntityContent, current.ID,
		map[string]any{"page": current.Page, "section": current.Section, "data": current.Data},
		map[string]any{"page": next.Page, "section": next.Section, "data": next.Data})
	s.invalidate(ctx, revalidate.ContentPaths(next.Page)...)
	return current.ID, false, nil
}

func (s *Service) DeleteContent(ctx context.Context, actor auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermContentEdit); err != nil {
		return err
	}
	current, err := s.store.Content().Get(ctx, id)
	if err != nil {
		return lookup(err, "Content")
	}
	if err := s.store.Content().Delete(ctx, id); err != nil {
		return lookup(err, "Content")
	}
	s.record(ctx, actor.ID, audit.ActionDelete, EntityContent, id, map[string]any{
		"page":    current.Page,
		"section": current.Section,
		"data":    current.Data,
	}, nil)
	s.invalidate(ctx, revalidate.ContentPaths(current.Page)...)
	return nil
}

// contentData accepts any JSON object and stores it compacted.
func contentData(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, invalid("data must be a JSON object")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, invalid("data must be a JSON object")
	}
	return json.RawMessage(buf.Bytes()), nil
}
