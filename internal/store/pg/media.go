package pg

import (
	"context"

	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/cms"
)

const mediaColumns = `
	m.id, m.storage_key, m.original_name, m.mime_type, m.size, m.alt_text,
	m.uploaded_by, u.name as uploader_name, m.url, m.created_at`

const mediaFrom = `media m left join users u on u.id = m.uploaded_by`

type mediaStore struct{ db *sqlx.DB }

func (s mediaStore) List(ctx context.Context, f cms.MediaFilter) ([]cms.Media, int, error) {
	w := &where{}
	if f.MimePrefix != "" {
		w.add("m.mime_type like $%d", f.MimePrefix+"%")
	}
	total, err := count(ctx, s.db, "media m", w)
	if err != nil {
		return nil, 0, err
	}
	limit, args := w.page(f.Paging)
	items := []cms.Media{}
	err = s.db.SelectContext(ctx, &items,
		"select "+mediaColumns+" from "+mediaFrom+w.String()+" order by m.created_at desc, m.id desc"+limit, args...)
	return items, total, err
}

func (s mediaStore) Get(ctx context.Context, id string) (cms.Media, error) {
	var m cms.Media
	err := s.db.GetContext(ctx, &m, "select "+mediaColumns+" from "+mediaFrom+" where m.id = $1", id)
	return m, mapErr(err)
}

func (s mediaStore) Create(ctx context.Context, m *cms.Media) error {
	_, err := s.db.ExecContext(ctx, `
		insert into media (id, storage_key, original_name, mime_type, size, alt_text, uploaded_by, url, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, m.ID, m.StorageKey, m.OriginalName, m.MimeType, m.Size, m.AltText, m.UploadedBy, m.URL, m.CreatedAt)
	return mapErr(err)
}

func (s mediaStore) UpdateAltText(ctx context.Context, id string, alt *string) error {
	return affected(s.db.ExecContext(ctx, `update media set alt_text = $2 where id = $1`, id, alt))
}

func (s mediaStore) Delete(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `delete from media where id = $1`, id))
}
