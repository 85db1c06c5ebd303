// Package pg is the Postgres implementation of the CMS, session and audit stores.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/config"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

var (
	_ cms.Store         = (*Store)(nil)
	_ auth.SessionStore = (*Store)(nil)
	_ audit.Store       = (*Store)(nil)
)

type Store struct {
	db *sqlx.DB
}

// Open connects through the pgx stdlib driver and applies the pool settings from cfg.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	db, err := sqlx.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle, e.g. one opened by sqlmock.
func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "pgx")}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db.DB }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Leads() cms.LeadStore               { return leadStore{s.db} }
func (s *Store) Posts() cms.PostStore               { return postStore{s.db} }
func (s *Store) Jobs() cms.JobStore                 { return jobStore{s.db} }
func (s *Store) Applications() cms.ApplicationStore { return appStore{s.db} }
func (s *Store) Users() cms.UserStore               { return userStore{s.db} }
func (s *Store) Media() cms.MediaStore              { return mediaStore{s.db} }
func (s *Store) Settings() cms.SettingStore         { return settingStore{s.db} }
func (s *Store) Content() cms.ContentStore          { return contentStore{s.db} }

// mapErr translates driver errors into the store sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return cms.ErrNotFound
	}
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return cms.ErrConflict
		case pgErrForeignKeyViolation:
			return cms.ErrNotFound
		}
	}
	return err
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// affected reports ErrNotFound when an update or delete matched no row.
func affected(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return cms.ErrNotFound
	}
	return nil
}

// where accumulates positional filter conditions.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(format string, v any) {
	w.args = append(w.args, v)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " where " + strings.Join(w.conds, " and ")
}

// page appends limit and offset arguments and returns the clause.
func (w *where) page(p cms.Paging) (string, []any) {
	args := append([]any(nil), w.args...)
	if p.Limit <= 0 {
		return "", args
	}
	args = append(args, p.Limit, p.Offset())
	return fmt.Sprintf(" limit $%d offset $%d", len(args)-1, len(args)), args
}

func count(ctx context.Context, db *sqlx.DB, from string, w *where) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, "select count(*) from "+from+w.String(), w.args...)
	return n, err
}
