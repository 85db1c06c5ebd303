package pg

import (
	"context"

	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/cms"
)

type settingStore struct{ db *sqlx.DB }

func (s settingStore) List(ctx context.Context) ([]cms.Setting, error) {
	items := []cms.Setting{}
	err := s.db.SelectContext(ctx, &items, `select key, value, updated_by, updated_at from settings order by key`)
	return items, err
}

func (s settingStore) Get(ctx context.Context, key string) (cms.Setting, error) {
	var st cms.Setting
	err := s.db.GetContext(ctx, &st, `select key, value, updated_by, updated_at from settings where key = $1`, key)
	return st, mapErr(err)
}

func (s settingStore) Create(ctx context.Context, st *cms.Setting) error {
	_, err := s.db.ExecContext(ctx, `
		insert into settings (key, value, updated_by, updated_at) values ($1, $2, $3, $4)
	`, st.Key, st.Value, st.UpdatedBy, st.UpdatedAt)
	return mapErr(err)
}

func (s settingStore) Update(ctx context.Context, st *cms.Setting) error {
	return affected(s.db.ExecContext(ctx, `
		update settings set value = $2, updated_by = $3, updated_at = $4 where key = $1
	`, st.Key, st.Value, st.UpdatedBy, st.UpdatedAt))
}

func (s settingStore) Delete(ctx context.Context, key string) error {
	return affected(s.db.ExecContext(ctx, `delete from settings where key = $1`, key))
}
