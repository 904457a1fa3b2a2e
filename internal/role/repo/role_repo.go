package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/role/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
)

// RoleRepo provides data access for the roles table.
type RoleRepo struct {
	db *sqlx.DB
}

func NewRoleRepo(db *sqlx.DB) *RoleRepo { return &RoleRepo{db: db} }

// EnsureTable creates the roles table and its unique name index.
func (r *RoleRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS roles (
  id varchar(32) PRIMARY KEY,
  name varchar(64) NOT NULL,
  scopes TEXT[] NOT NULL DEFAULT '{}',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_roles_name ON roles(name);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

type roleRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Scopes    pq.StringArray `db:"scopes"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row roleRow) entity() *entity.Role {
	scopes := []string(row.Scopes)
	if scopes == nil {
		scopes = []string{}
	}
	return &entity.Role{ID: row.ID, Name: row.Name, Scopes: scopes, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
}

const roleColumns = `id, name, scopes, created_at, updated_at`

func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	const q = `INSERT INTO roles (id, name, scopes, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, role.ID, role.Name, pq.StringArray(role.Scopes), role.CreatedAt, role.UpdatedAt)
	return store.FromSQL(err)
}

func (r *RoleRepo) get(ctx context.Context, where string, arg any) (*entity.Role, error) {
	var row roleRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+roleColumns+` FROM roles WHERE `+where+`=$1`, arg); err != nil {
		return nil, store.FromSQL(err)
	}
	return row.entity(), nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.get(ctx, "id", id)
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.get(ctx, "name", name)
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	var rows []roleRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+roleColumns+` FROM roles ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]*entity.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}
