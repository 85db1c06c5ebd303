package pg

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/cms"
)

const postColumns = `
	p.id, p.title, p.slug, p.excerpt, p.content, p.cover_image, p.category, p.tags::text as tags,
	p.status, p.author_id, u.name as author_name, p.seo_title, p.seo_description,
	p.published_at, p.created_at, p.updated_at`

const postFrom = `blog_posts p left join users u on u.id = p.author_id`

// postRow carries the jsonb tag array alongside the post columns.
type postRow struct {
	cms.BlogPost
	TagsJSON []byte `db:"tags"`
}

func (r postRow) post() (cms.BlogPost, error) {
	p := r.BlogPost
	p.Tags = []string{}
	if len(r.TagsJSON) > 0 {
		if err := json.Unmarshal(r.TagsJSON, &p.Tags); err != nil {
			return cms.BlogPost{}, err
		}
	}
	return p, nil
}

func tagsJSON(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	data, _ := json.Marshal(tags)
	return string(data)
}

type postStore struct{ db *sqlx.DB }

func (s postStore) List(ctx context.Context, f cms.PostFilter) ([]cms.BlogPost, int, error) {
	w := &where{}
	if f.Status != "" {
		w.add("p.status = $%d", f.Status)
	}
	if f.Category != "" {
		w.add("p.category = $%d", f.Category)
	}
	total, err := count(ctx, s.db, "blog_posts p", w)
	if err != nil {
		return nil, 0, err
	}
	order := " order by p.created_at desc, p.id desc"
	if f.Status == cms.StatusPublished {
		order = " order by p.published_at desc nulls last, p.id desc"
	}
	limit, args := w.page(f.Paging)
	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, "select "+postColumns+" from "+postFrom+w.String()+order+limit, args...); err != nil {
		return nil, 0, err
	}
	items := make([]cms.BlogPost, 0, len(rows))
	for _, r := range rows {
		p, err := r.post()
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (s postStore) get(ctx context.Context, col, v string) (cms.BlogPost, error) {
	var r postRow
	if err := s.db.GetContext(ctx, &r, "select "+postColumns+" from "+postFrom+" where p."+col+" = $1", v); err != nil {
		return cms.BlogPost{}, mapErr(err)
	}
	return r.post()
}

func (s postStore) Get(ctx context.Context, id string) (cms.BlogPost, error) {
	return s.get(ctx, "id", id)
}

func (s postStore) GetBySlug(ctx context.Context, slug string) (cms.BlogPost, error) {
	return s.get(ctx, "slug", slug)
}

func (s postStore) Create(ctx context.Context, p *cms.BlogPost) error {
	_, err := s.db.ExecContext(ctx, `
		insert into blog_posts (id, title, slug, excerpt, content, cover_image, category, tags, status,
		                        author_id, seo_title, seo_description, published_at, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.CoverImage, p.Category, tagsJSON(p.Tags), p.Status,
		p.AuthorID, p.SEOTitle, p.SEODescription, p.PublishedAt, p.CreatedAt, p.UpdatedAt)
	return mapErr(err)
}

func (s postStore) Update(ctx context.Context, p *cms.BlogPost) error {
	return affected(s.db.ExecContext(ctx, `
		update blog_posts
		set title = $2, slug = $3, excerpt = $4, content = $5, cover_image = $6, category = $7, tags = $8,
		    status = $9, seo_title = $10, seo_description = $11, published_at = $12, updated_at = $13
		where id = $1
	`, p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.CoverImage, p.Category, tagsJSON(p.Tags),
		p.Status, p.SEOTitle, p.SEODescription, p.PublishedAt, p.UpdatedAt))
}

func (s postStore) Delete(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `delete from blog_posts where id = $1`, id))
}
