package cms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/obs"
	"beaconcms.org/internal/storage"
	"beaconcms.org/internal/validate"
)

// MediaPathPrefix is where the media handler serves stored objects.
const MediaPathPrefix = "/media/"

// Upload is one file received by the media endpoint.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	AltText     *string
}

type MediaPatch struct {
	AltText *string `json:"altText" validate:"omitempty,max=500"`
}

func (s *Service) ListMedia(ctx context.Context, actor auth.Principal, f MediaFilter) ([]Media, Pagination, error) {
	if err := auth.Require(actor, auth.PermMediaView); err != nil {
		return nil, Pagination{}, err
	}
	f.Paging = f.Paging.normalize()
	f.MimePrefix = strings.TrimSpace(f.MimePrefix)
	items, total, err := s.store.Media().List(ctx, f)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, f.Paging.result(total), nil
}

func (s *Service) GetMedia(ctx context.Context, actor auth.Principal, id string) (Media, error) {
	if err := auth.Require(actor, auth.PermMediaView); err != nil {
		return Media{}, err
	}
	m, err := s.store.Media().Get(ctx, id)
	return m, lookup(err, "Media")
}

func (s *Service) UploadMedia(ctx context.Context, actor auth.Principal, up Upload) (Media, error) {
	if err := auth.Require(actor, auth.PermMediaUpload); err != nil {
		return Media{}, err
	}
	if s.files == nil {
		return Media{}, errors.New("cms: media storage is not configured")
	}
	if up.Body == nil || up.Size == 0 {
		return Media{}, invalid("file is required")
	}
	if up.AltText != nil && len(*up.AltText) > 500 {
		return Media{}, invalid("altText must be at most 500 characters")
	}
	if err := storage.CheckUpload(up.Size, s.maxUpload, up.ContentType); err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return Media{}, invalid("File too large. Maximum size is %s", humanBytes(s.maxUpload))
		case errors.Is(err, storage.ErrTypeNotAllowed):
			return Media{}, invalid("File type not allowed")
		}
		return Media{}, err
	}
	key, err := storage.NewKey(up.ContentType)
	if err != nil {
		return Media{}, err
	}
	if err := s.files.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return Media{}, err
	}

	uploader := actor.ID
	m := Media{
		ID:           newID(),
		StorageKey:   key,
		OriginalName: filepath.Base(strings.TrimSpace(up.Filename)),
		MimeType:     up.ContentType,
		Size:         up.Size,
		AltText:      validate.NullIfEmpty(up.AltText),
		UploadedBy:   &uploader,
		URL:          MediaPathPrefix + key,
		CreatedAt:    s.timestamp(),
	}
	if err := s.store.Media().Create(ctx, &m); err != nil {
		s.removeObject(ctx, key)
		return Media{}, err
	}
	s.record(ctx, actor.ID, audit.ActionCreate, EntityMedia, m.ID, nil, map[string]any{
		"originalName": m.OriginalName,
		"mimeType":     m.MimeType,
		"size":         m.Size,
		"storage":      s.files.Name(),
	})
	return m, nil
}

func (s *Service) UpdateMedia(ctx context.Context, actor auth.Principal, id string, p MediaPatch) (Media, error) {
	if err := auth.Require(actor, auth.PermMediaUpload); err != nil {
		return Media{}, err
	}
	if err := checkInput(p); err != nil {
		return Media{}, err
	}
	current, err := s.store.Media().Get(ctx, id)
	if err != nil {
		return Media{}, lookup(err, "Media")
	}
	next := current
	next.AltText = validate.NullIfEmpty(p.AltText)
	if err := s.store.Media().UpdateAltText(ctx, id, next.AltText); err != nil {
		return Media{}, lookup(err, "Media")
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntityMedia, id,
		map[string]any{"altText": str(current.AltText)},
		map[string]any{"altText": str(next.AltText)})
	return next, nil
}

// DeleteMedia removes the row first; the stored object is removed best effort afterwards.
func (s *Service) DeleteMedia(ctx context.Context, actor auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermMediaDelete); err != nil {
		return err
	}
	current, err := s.store.Media().Get(ctx, id)
	if err != nil {
		return lookup(err, "Media")
	}
	if err := s.store.Media().Delete(ctx, id); err != nil {
		return lookup(err, "Media")
	}
	s.removeObject(ctx, current.StorageKey)
	s.record(ctx, actor.ID, audit.ActionDelete, EntityMedia, id, map[string]any{
		"originalName": current.OriginalName,
		"storageKey":   current.StorageKey,
	}, nil)
	return nil
}

// OpenMedia resolves a storage key for the public media handler. It returns either a
// redirect URL or a reader over the object bytes.
func (s *Service) OpenMedia(ctx context.Context, key string) (string, io.ReadCloser, error) {
	if s.files == nil || !storage.ValidKey(key) {
		return "", nil, notFound("Media")
	}
	url, err := s.files.URL(ctx, key)
	if err != nil {
		return "", nil, err
	}
	if url != "" {
		return url, nil, nil
	}
	rc, err := s.files.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, notFound("Media")
	}
	if err != nil {
		return "", nil, err
	}
	return "", rc, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if s.files == nil {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		obs.Logger().Warn("media object delete failed", zap.String("storage_key", key), zap.Error(err))
	}
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
