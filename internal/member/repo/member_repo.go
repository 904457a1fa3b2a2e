package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/member/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
)

// MemberRepo provides data access for the members table.
type MemberRepo struct {
	db *sqlx.DB
}

func NewMemberRepo(db *sqlx.DB) *MemberRepo { return &MemberRepo{db: db} }

// EnsureTable creates the members table. The compound unique index is what
// actually keeps a user to one role per community under concurrent inserts.
func (r *MemberRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS members (
  id varchar(32) PRIMARY KEY,
  community_id varchar(32) NOT NULL,
  user_id varchar(32) NOT NULL,
  role_id varchar(32) NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_members_community_user ON members(community_id, user_id);
CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const memberColumns = `id, community_id, user_id, role_id, created_at`

func (r *MemberRepo) Create(ctx context.Context, m *entity.Member) error {
	const q = `INSERT INTO members (id, community_id, user_id, role_id, created_at)
		VALUES (:id, :community_id, :user_id, :role_id, :created_at)`
	_, err := r.db.NamedExecContext(ctx, q, m)
	return store.FromSQL(err)
}

func (r *MemberRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id=$1`, id)
	return err
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (*entity.Member, error) {
	var row entity.Member
	if err := r.db.GetContext(ctx, &row, `SELECT `+memberColumns+` FROM members WHERE id=$1`, id); err != nil {
		return nil, store.FromSQL(err)
	}
	return &row, nil
}

func (r *MemberRepo) Find(ctx context.Context, communityID, userID string) (*entity.Member, error) {
	var row entity.Member
	const q = `SELECT ` + memberColumns + ` FROM members WHERE community_id=$1 AND user_id=$2`
	if err := r.db.GetContext(ctx, &row, q, communityID, userID); err != nil {
		return nil, store.FromSQL(err)
	}
	return &row, nil
}

func (r *MemberRepo) ListByCommunity(ctx context.Context, communityID string) ([]*entity.Member, error) {
	rows := []*entity.Member{}
	const q = `SELECT ` + memberColumns + ` FROM members WHERE community_id=$1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, q, communityID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MemberRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Member, error) {
	rows := []*entity.Member{}
	const q = `SELECT ` + memberColumns + ` FROM members WHERE user_id=$1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	return rows, nil
}
