// Package memory is an in-process backend for the store contracts. It keeps
// the same unique indexes as the Postgres schema and is safe for concurrent use.
package memory

import (
	"context"
	"slices"
	"sync"

	communityentity "github.com/ovaphlow/pitchfork/service-community-go/internal/community/entity"
	memberentity "github.com/ovaphlow/pitchfork/service-community-go/internal/member/entity"
	roleentity "github.com/ovaphlow/pitchfork/service-community-go/internal/role/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
	userentity "github.com/ovaphlow/pitchfork/service-community-go/internal/user/entity"
)

// DB holds every collection behind one lock. Rows keep insertion order.
type DB struct {
	mu          sync.RWMutex
	users       []*userentity.User
	roles       []*roleentity.Role
	communities []*communityentity.Community
	members     []*memberentity.Member
}

// New returns an empty database.
func New() *DB { return &DB{} }

// Stores exposes the collections through the store contracts.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Users:       &UserRepo{db: db},
		Roles:       &RoleRepo{db: db},
		Communities: &CommunityRepo{db: db},
		Members:     &MemberRepo{db: db},
	}
}

func find[T any](rows []*T, match func(*T) bool) (*T, error) {
	for _, r := range rows {
		if match(r) {
			c := *r
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func filter[T any](rows []*T, match func(*T) bool) []*T {
	out := make([]*T, 0)
	for _, r := range rows {
		if match(r) {
			c := *r
			out = append(out, &c)
		}
	}
	return out
}

func remove[T any](rows []*T, match func(*T) bool) []*T {
	return slices.DeleteFunc(rows, match)
}

// UserRepo implements store.UserStore.
type UserRepo struct{ db *DB }

func (r *UserRepo) Create(_ context.Context, u *userentity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if slices.ContainsFunc(r.db.users, func(x *userentity.User) bool { return x.ID == u.ID || x.Email == u.Email }) {
		return store.ErrConflict
	}
	c := *u
	r.db.users = append(r.db.users, &c)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*userentity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return find(r.db.users, func(x *userentity.User) bool { return x.ID == id })
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*userentity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return find(r.db.users, func(x *userentity.User) bool { return x.Email == email })
}

func (r *UserRepo) List(_ context.Context) ([]*userentity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return filter(r.db.users, func(*userentity.User) bool { return true }), nil
}

// RoleRepo implements store.RoleStore.
type RoleRepo struct{ db *DB }

func (r *RoleRepo) Create(_ context.Context, role *roleentity.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if slices.ContainsFunc(r.db.roles, func(x *roleentity.Role) bool { return x.ID == role.ID || x.Name == role.Name }) {
		return store.ErrConflict
	}
	c := *role
	c.Scopes = slices.Clone(role.Scopes)
	r.db.roles = append(r.db.roles, &c)
	return nil
}

func (r *RoleRepo) GetByID(_ context.Context, id string) (*roleentity.Role, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return find(r.db.roles, func(x *roleentity.Role) bool { return x.ID == id })
}

func (r *RoleRepo) GetByName(_ context.Context, name string) (*roleentity.Role, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return find(r.db.roles, func(x *roleentity.Role) bool { return x.Name == name })
}

func (r *RoleRepo) List(_ context.Context) ([]*roleentity.Role, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return filter(r.db.roles, func(*roleentity.Role) bool { return true }), nil
}

// CommunityRepo implements store.CommunityStore.
type CommunityRepo struct{ db *DB }

func (r *CommunityRepo) Create(_ context.Context, c *communityentity.Community) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if slices.ContainsFunc(r.db.communities, func(x *communityentity.Community) bool { return x.ID == c.ID || x.Slug == c.Slug }) {
		return store.ErrConflict
	}
	cp := *c
	r.db.communities = append(r.db.communities, &cp)
	return nil
}

func (r *CommunityRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.communities = remove(r.db.communities, func(x *communityentity.Community) bool { return x.ID == id })
	return nil
}

func (r *CommunityRepo) GetByID(_ context.Context, id string) (*communityentity.Community, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return find(r.db.communities, func(x *communityentity.Community) bool { return x.ID == id })
}

func (r *CommunityRepo) GetBySlug(_ context.Context, slug string) (*communityentity.Community, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return find(r.db.communities, func(x *communityentity.Community) bool { return x.Slug == slug })
}

func (r *CommunityRepo) List(_ context.Context) ([]*communityentity.Community, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return filter(r.db.communities, func(*communityentity.Community) bool { return true }), nil
}

func (r *CommunityRepo) ListByOwner(_ context.Context, ownerID string) ([]*communityentity.Community, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return filter(r.db.communities, func(x *communityentity.Community) bool { return x.Owner == ownerID }), nil
}

func (r *CommunityRepo) ListByIDs(_ context.Context, ids []string) ([]*communityentity.Community, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return filter(r.db.communities, func(x *communityentity.Community) bool { return slices.Contains(ids, x.ID) }), nil
}

// MemberRepo implements store.MemberStore.
type MemberRepo struct{ db *DB }

func (r *MemberRepo) Create(_ context.Context, m *memberentity.Member) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if slices.ContainsFunc(r.db.members, func(x *memberentity.Member) bool {
		return x.ID == m.ID || (x.Community == m.Community && x.User == m.User)
	}) {
		return store.ErrConflict
	}
	c := *m
	r.db.members = append(r.db.members, &c)
	return nil
}

func (r *MemberRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.members = remove(r.db.members, func(x *memberentity.Member) bool { return x.ID == id })
	return nil
}

func (r *MemberRepo) GetByID(_ context.Context, id string) (*memberentity.Member, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return find(r.db.members, func(x *memberentity.Member) bool { return x.ID == id })
}

func (r *MemberRepo) Find(_ context.Context, communityID, userID string) (*memberentity.Member, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return find(r.db.members, func(x *memberentity.Member) bool { return x.Community == communityID && x.User == userID })
}

func (r *MemberRepo) ListByCommunity(_ context.Context, communityID string) ([]*memberentity.Member, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return filter(r.db.members, func(x *memberentity.Member) bool { return x.Community == communityID }), nil
}

func (r *MemberRepo) ListByUser(_ context.Context, userID string) ([]*memberentity.Member, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return filter(r.db.members, func(x *memberentity.Member) bool { return x.User == userID }), nil
}
