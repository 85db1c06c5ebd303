package pg

import (
	"context"

	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/cms"
)

const contentColumns = `id, page, section, data::text as data, updated_by, updated_at`

type contentRow struct {
	cms.Content
	DataJSON []byte `db:"data"`
}

func (r contentRow) content() cms.Content {
	c := r.Content
	c.Data = r.DataJSON
	return c
}

type contentStore struct{ db *sqlx.DB }

func (s contentStore) List(ctx context.Context, page string) ([]cms.Content, error) {
	w := &where{}
	if page != "" {
		w.add("page = $%d", page)
	}
	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows, "select "+contentColumns+" from page_content"+w.String()+" order by page, section", w.args...); err != nil {
		return nil, err
	}
	items := make([]cms.Content, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.content())
	}
	return items, nil
}

func (s contentStore) Get(ctx context.Context, id string) (cms.Content, error) {
	var r contentRow
	if err := s.db.GetContext(ctx, &r, "select "+contentColumns+" from page_content where id = $1", id); err != nil {
		return cms.Content{}, mapErr(err)
	}
	return r.content(), nil
}

func (s contentStore) GetBySection(ctx context.Context, page, section string) (cms.Content, error) {
	var r contentRow
	err := s.db.GetContext(ctx, &r, "select "+contentColumns+" from page_content where page = $1 and section = $2", page, section)
	if err != nil {
		return cms.Content{}, mapErr(err)
	}
	return r.content(), nil
}

func (s contentStore) Create(ctx context.Context, c *cms.Content) error {
	_, err := s.db.ExecContext(ctx, `
		insert into page_content (id, page, section, data, updated_by, updated_at)
		values ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Page, c.Section, string(c.Data), c.UpdatedBy, c.UpdatedAt)
	return mapErr(err)
}

func (s contentStore) Update(ctx context.Context, c *cms.Content) error {
	return affected(s.db.ExecContext(ctx, `
		update page_content set data = $2, updated_by = $3, updated_at = $4 where id = $1
	`, c.ID, string(c.Data), c.UpdatedBy, c.UpdatedAt))
}

func (s contentStore) Delete(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `delete from page_content where id = $1`, id))
}
