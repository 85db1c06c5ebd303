package memory

import (
	"context"
	"time"

	"beaconcms.org/internal/cms"
)

type postStore struct{ s *Store }

func (p postStore) view(post cms.BlogPost) cms.BlogPost {
	post.AuthorName = p.s.userName(post.AuthorID)
	post.Tags = append([]string(nil), post.Tags...)
	return post
}

func (p postStore) slugTaken(slug, except string) bool {
	for id, post := range p.s.posts {
		if post.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (p postStore) List(_ context.Context, f cms.PostFilter) ([]cms.BlogPost, int, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	var out []cms.BlogPost
	for _, post := range p.s.posts {
		if f.Status != "" && post.Status != f.Status {
			continue
		}
		if f.Category != "" && deref(post.Category) != f.Category {
			continue
		}
		out = append(out, p.view(post))
	}
	newestFirst(out, func(x cms.BlogPost) time.Time { return x.CreatedAt }, func(x cms.BlogPost) string { return x.ID })
	return page(out, f.Paging), len(out), nil
}

func (p postStore) Get(_ context.Context, id string) (cms.BlogPost, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	post, ok := p.s.posts[id]
	if !ok {
		return cms.BlogPost{}, cms.ErrNotFound
	}
	return p.view(post), nil
}

func (p postStore) GetBySlug(_ context.Context, slug string) (cms.BlogPost, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	for _, post := range p.s.posts {
		if post.Slug == slug {
			return p.view(post), nil
		}
	}
	return cms.BlogPost{}, cms.ErrNotFound
}

func (p postStore) Create(_ context.Context, post *cms.BlogPost) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.posts[post.ID]; ok || p.slugTaken(post.Slug, "") {
		return cms.ErrConflict
	}
	stored := *post
	stored.AuthorName = nil
	stored.Tags = append([]string(nil), post.Tags...)
	p.s.posts[post.ID] = stored
	return nil
}

func (p postStore) Update(_ context.Context, post *cms.BlogPost) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.posts[post.ID]; !ok {
		return cms.ErrNotFound
	}
	if p.slugTaken(post.Slug, post.ID) {
		return cms.ErrConflict
	}
	stored := *post
	stored.AuthorName = nil
	stored.Tags = append([]string(nil), post.Tags...)
	p.s.posts[post.ID] = stored
	return nil
}

func (p postStore) Delete(_ context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.posts[id]; !ok {
		return cms.ErrNotFound
	}
	delete(p.s.posts, id)
	return nil
}
