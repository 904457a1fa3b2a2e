package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/community/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
)

// CommunityRepo provides data access for the communities table.
type CommunityRepo struct {
	db *sqlx.DB
}

func NewCommunityRepo(db *sqlx.DB) *CommunityRepo { return &CommunityRepo{db: db} }

// EnsureTable creates the communities table. slug uniqueness is the
// authoritative guard against concurrent creates of the same name.
func (r *CommunityRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS communities (
  id varchar(32) PRIMARY KEY,
  name varchar(128) NOT NULL,
  slug varchar(255) NOT NULL,
  owner_id varchar(32) NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_communities_slug ON communities(slug);
CREATE INDEX IF NOT EXISTS idx_communities_owner_id ON communities(owner_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const communityColumns = `id, name, slug, owner_id, created_at, updated_at`

func (r *CommunityRepo) Create(ctx context.Context, c *entity.Community) error {
	const q = `INSERT INTO communities (id, name, slug, owner_id, created_at, updated_at)
		VALUES (:id, :name, :slug, :owner_id, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, q, c)
	return store.FromSQL(err)
}

func (r *CommunityRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM communities WHERE id=$1`, id)
	return err
}

func (r *CommunityRepo) GetByID(ctx context.Context, id string) (*entity.Community, error) {
	var row entity.Community
	if err := r.db.GetContext(ctx, &row, `SELECT `+communityColumns+` FROM communities WHERE id=$1`, id); err != nil {
		return nil, store.FromSQL(err)
	}
	return &row, nil
}

func (r *CommunityRepo) GetBySlug(ctx context.Context, slug string) (*entity.Community, error) {
	var row entity.Community
	if err := r.db.GetContext(ctx, &row, `SELECT `+communityColumns+` FROM communities WHERE slug=$1`, slug); err != nil {
		return nil, store.FromSQL(err)
	}
	return &row, nil
}

func (r *CommunityRepo) List(ctx context.Context) ([]*entity.Community, error) {
	return r.selectMany(ctx, `SELECT `+communityColumns+` FROM communities ORDER BY id`)
}

func (r *CommunityRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Community, error) {
	return r.selectMany(ctx, `SELECT `+communityColumns+` FROM communities WHERE owner_id=$1 ORDER BY id`, ownerID)
}

func (r *CommunityRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Community, error) {
	if len(ids) == 0 {
		return []*entity.Community{}, nil
	}
	return r.selectMany(ctx, `SELECT `+communityColumns+` FROM communities WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
}

func (r *CommunityRepo) selectMany(ctx context.Context, q string, args ...any) ([]*entity.Community, error) {
	rows := []*entity.Community{}
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
