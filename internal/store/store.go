// Package store declares the persistence contracts shared by the feature
// services. Implementations live in internal/<feature>/repo (Postgres) and
// internal/store/memory.
package store

import (
	"context"
	"errors"

	communityentity "github.com/ovaphlow/pitchfork/service-community-go/internal/community/entity"
	memberentity "github.com/ovaphlow/pitchfork/service-community-go/internal/member/entity"
	roleentity "github.com/ovaphlow/pitchfork/service-community-go/internal/role/entity"
	userentity "github.com/ovaphlow/pitchfork/service-community-go/internal/user/entity"
)

var (
	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when an insert violates a unique index.
	ErrConflict = errors.New("store: unique constraint violated")
)

// UserStore persists users. email is unique.
type UserStore interface {
	Create(ctx context.Context, u *userentity.User) error
	GetByID(ctx context.Context, id string) (*userentity.User, error)
	GetByEmail(ctx context.Context, email string) (*userentity.User, error)
	List(ctx context.Context) ([]*userentity.User, error)
}

// RoleStore persists roles. name is unique.
type RoleStore interface {
	Create(ctx context.Context, r *roleentity.Role) error
	GetByID(ctx context.Context, id string) (*roleentity.Role, error)
	GetByName(ctx context.Context, name string) (*roleentity.Role, error)
	List(ctx context.Context) ([]*roleentity.Role, error)
}

// CommunityStore persists communities. slug is unique.
type CommunityStore interface {
	Create(ctx context.Context, c *communityentity.Community) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*communityentity.Community, error)
	GetBySlug(ctx context.Context, slug string) (*communityentity.Community, error)
	List(ctx context.Context) ([]*communityentity.Community, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*communityentity.Community, error)
	ListByIDs(ctx context.Context, ids []string) ([]*communityentity.Community, error)
}

// MemberStore persists memberships. (community, user) is unique.
type MemberStore interface {
	Create(ctx context.Context, m *memberentity.Member) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*memberentity.Member, error)
	Find(ctx context.Context, communityID, userID string) (*memberentity.Member, error)
	ListByCommunity(ctx context.Context, communityID string) ([]*memberentity.Member, error)
	ListByUser(ctx context.Context, userID string) ([]*memberentity.Member, error)
}

// Stores groups one backend's implementations.
type Stores struct {
	Users       UserStore
	Roles       RoleStore
	Communities CommunityStore
	Members     MemberStore
}
