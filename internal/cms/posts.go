package cms

import (
	"context"
	"errors"
	"strings"
	"time"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/revalidate"
	"beaconcms.org/internal/validate"
)

var publishStatuses = []string{StatusDraft, StatusPublished, StatusArchived}

type PostInput struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Slug           string   `json:"slug" validate:"omitempty,max=200"`
	Excerpt        *string  `json:"excerpt" validate:"omitempty,max=500"`
	Content        string   `json:"content" validate:"required"`
	CoverImage     *string  `json:"coverImage" validate:"omitempty,max=1000"`
	Category       *string  `json:"category" validate:"omitempty,max=100"`
	Tags           []string `json:"tags" validate:"max=20,dive,max=50"`
	Status         string   `json:"status" validate:"omitempty,oneof=draft published archived"`
	SEOTitle       *string  `json:"seoTitle" validate:"omitempty,max=200"`
	SEODescription *string  `json:"seoDescription" validate:"omitempty,max=500"`
}

type PostPatch struct {
	Title          *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Slug           *string   `json:"slug" validate:"omitempty,max=200"`
	Excerpt        *string   `json:"excerpt" validate:"omitempty,max=500"`
	Content        *string   `json:"content" validate:"omitempty,min=1"`
	CoverImage     *string   `json:"coverImage" validate:"omitempty,max=1000"`
	Category       *string   `json:"category" validate:"omitempty,max=100"`
	Tags           *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Status         *string   `json:"status" validate:"omitempty,oneof=draft published archived"`
	SEOTitle       *string   `json:"seoTitle" validate:"omitempty,max=200"`
	SEODescription *string   `json:"seoDescription" validate:"omitempty,max=500"`
}

func (s *Service) ListPosts(ctx context.Context, actor auth.Principal, f PostFilter) ([]BlogPost, Pagination, error) {
	if err := auth.Require(actor, auth.PermBlogView); err != nil {
		return nil, Pagination{}, err
	}
	if f.Status != "" && !statusAllowed(f.Status, publishStatuses...) {
		return nil, Pagination{}, invalid("status must be one of: draft, published, archived")
	}
	return s.listPosts(ctx, f)
}

func (s *Service) listPosts(ctx context.Context, f PostFilter) ([]BlogPost, Pagination, error) {
	f.Paging = f.Paging.normalize()
	items, total, err := s.store.Posts().List(ctx, f)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, f.Paging.result(total), nil
}

func (s *Service) GetPost(ctx context.Context, actor auth.Principal, id string) (BlogPost, error) {
	if err := auth.Require(actor, auth.PermBlogView); err != nil {
		return BlogPost{}, err
	}
	post, err := s.store.Posts().Get(ctx, id)
	return post, lookup(err, "Post")
}

// PublishedPosts lists posts visible on the public blog.
func (s *Service) PublishedPosts(ctx context.Context, category string, p Paging) ([]BlogPost, Pagination, error) {
	return s.listPosts(ctx, PostFilter{Status: StatusPublished, Category: strings.TrimSpace(category), Paging: p})
}

// PublishedPost returns a published post by slug; drafts and archived posts are not found.
func (s *Service) PublishedPost(ctx context.Context, slug string) (BlogPost, error) {
	post, err := s.store.Posts().GetBySlug(ctx, slug)
	if err != nil {
		return BlogPost{}, lookup(err, "Post")
	}
	if post.Status != StatusPublished {
		return BlogPost{}, notFound("Post")
	}
	return post, nil
}

func (s *Service) CreatePost(ctx context.Context, actor auth.Principal, in PostInput) (string, error) {
	if err := auth.Require(actor, auth.PermBlogCreate); err != nil {
		return "", err
	}
	if err := checkInput(in); err != nil {
		return "", err
	}
	slug := validate.Slugify(orDefault(strings.TrimSpace(in.Slug), in.Title))
	if slug == "" {
		return "", invalid("slug must contain at least one letter or number")
	}
	status := orDefault(in.Status, StatusDraft)
	if status == StatusPublished {
		if err := auth.Require(actor, auth.PermBlogPublish); err != nil {
			return "", err
		}
	}
	if err := s.ensurePostSlugFree(ctx, slug, ""); err != nil {
		return "", err
	}

	now := s.timestamp()
	author := actor.ID
	post := BlogPost{
		ID:             newID(),
		Title:          strings.TrimSpace(in.Title),
		Slug:           slug,
		Excerpt:        validate.NullIfEmpty(in.Excerpt),
		Content:        in.Content,
		CoverImage:     validate.NullIfEmpty(in.CoverImage),
		Category:       validate.NullIfEmpty(in.Category),
		Tags:           normalizeTags(in.Tags),
		Status:         status,
		AuthorID:       &author,
		SEOTitle:       validate.NullIfEmpty(in.SEOTitle),
		SEODescription: validate.NullIfEmpty(in.SEODescription),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == StatusPublished {
		post.PublishedAt = &now
	}
	if err := s.store.Posts().Create(ctx, &post); err != nil {
		return "", s.postConflict(err)
	}
	s.record(ctx, actor.ID, audit.ActionCreate, EntityPost, post.ID, nil, map[string]any{
		"title":  post.Title,
		"slug":   post.Slug,
		"status": post.Status,
	})
	s.invalidate(ctx, revalidate.BlogPaths(post.Slug)...)
	return post.ID, nil
}

func (s *Service) UpdatePost(ctx context.Context, actor auth.Principal, id string, p PostPatch) (BlogPost, error) {
	if err := auth.Require(actor, auth.PermBlogEdit); err != nil {
		return BlogPost{}, err
	}
	if err := checkInput(p); err != nil {
		return BlogPost{}, err
	}
	current, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		return BlogPost{}, lookup(err, "Post")
	}
	next := current
	d := newDiff()

	if p.Slug != nil {
		slug := validate.Slugify(*p.Slug)
		if slug == "" {
			return BlogPost{}, invalid("slug must contain at least one letter or number")
		}
		if slug != current.Slug {
			if err := s.ensurePostSlugFree(ctx, slug, current.ID); err != nil {
				return BlogPost{}, err
			}
		}
		next.Slug = slug
		d.set("slug", current.Slug, next.Slug)
	}
	if p.Status != nil && *p.Status != current.Status {
		if *p.Status == StatusPublished {
			if err := auth.Require(actor, auth.PermBlogPublish); err != nil {
				return BlogPost{}, err
			}
		}
		next.Status = *p.Status
		next.PublishedAt = publishedAt(current.PublishedAt, next.Status, s.timestamp())
		d.set("status", current.Status, next.Status)
		d.set("publishedAt", timeVal(current.PublishedAt), timeVal(next.PublishedAt))
	}
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
		d.set("title", current.Title, next.Title)
	}
	if p.Excerpt != nil {
		next.Excerpt = validate.NullIfEmpty(p.Excerpt)
		d.set("excerpt", str(current.Excerpt), str(next.Excerpt))
	}
	if p.Content != nil {
		next.Content = *p.Content
		if next.Content != current.Content {
			d.set("contentLength", len(current.Content), len(next.Content))
		}
	}
	if p.CoverImage != nil {
		next.CoverImage = validate.NullIfEmpty(p.CoverImage)
		d.set("coverImage", str(current.CoverImage), str(next.CoverImage))
	}
	if p.Category != nil {
		next.Category = validate.NullIfEmpty(p.Category)
		d.set("category", str(current.Category), str(next.Category))
	}
	if p.Tags != nil {
		next.Tags = normalizeTags(*p.Tags)
		d.set("tags", tagList(current.Tags), tagList(next.Tags))
	}
	if p.SEOTitle != nil {
		next.SEOTitle = validate.NullIfEmpty(p.SEOTitle)
		d.set("seoTitle", str(current.SEOTitle), str(next.SEOTitle))
	}
	if p.SEODescription != nil {
		next.SEODescription = validate.NullIfEmpty(p.SEODescription)
		d.set("seoDescription", str(current.SEODescription), str(next.SEODescription))
	}
	next.UpdatedAt = s.timestamp()

	if err := s.store.Posts().Update(ctx, &next); err != nil {
		return BlogPost{}, s.postConflict(lookup(err, "Post"))
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntityPost, id, d.old, d.new)
	s.invalidate(ctx, revalidate.BlogPaths(current.Slug, next.Slug)...)
	return next, nil
}

func (s *Service) DeletePost(ctx context.Context, actor auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermBlogDelete); err != nil {
		return err
	}
	current, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		return lookup(err, "Post")
	}
	if err := s.store.Posts().Delete(ctx, id); err != nil {
		return lookup(err, "Post")
	}
	s.record(ctx, actor.ID, audit.ActionDelete, EntityPost, id, map[string]any{
		"title":  current.Title,
		"slug":   current.Slug,
		"status": current.Status,
	}, nil)
	s.invalidate(ctx, revalidate.BlogPaths(current.Slug)...)
	return nil
}

func (s *Service) ensurePostSlugFree(ctx context.Context, slug, ownID string) error {
	existing, err := s.store.Posts().GetBySlug(ctx, slug)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownID:
		return conflict("A post with this slug already exists")
	}
	return nil
}

func (s *Service) postConflict(err error) error {
	var e *Error
	if errors.Is(err, ErrConflict) && !errors.As(err, &e) {
		return conflict("A post with this slug already exists")
	}
	return err
}

// publishedAt is stamped when a record first enters published and cleared when it returns to draft.
func publishedAt(current *time.Time, status string, now time.Time) *time.Time {
	switch status {
	case StatusPublished:
		if current == nil {
			return &now
		}
		return current
	case StatusDraft:
		return nil
	default:
		return current
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func tagList(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
