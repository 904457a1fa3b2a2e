// Package access decides whether a principal may act on a community.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	communityentity "github.com/ovaphlow/pitchfork/service-community-go/internal/community/entity"
	memberentity "github.com/ovaphlow/pitchfork/service-community-go/internal/member/entity"
	roleentity "github.com/ovaphlow/pitchfork/service-community-go/internal/role/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
	userentity "github.com/ovaphlow/pitchfork/service-community-go/internal/user/entity"
)

type memberFinder interface {
	Find(ctx context.Context, communityID, userID string) (*memberentity.Member, error)
}

type roleFinder interface {
	GetByName(ctx context.Context, name string) (*roleentity.Role, error)
}

// Engine evaluates owner-or-admin rules against the membership store.
type Engine struct {
	members memberFinder
	roles   roleFinder
}

func NewEngine(members memberFinder, roles roleFinder) *Engine {
	return &Engine{members: members, roles: roles}
}

// RequireUser rejects anonymous principals with NOT_AUTHENTICATED.
func RequireUser(principal *userentity.User) error {
	if principal == nil {
		return apperr.Unauthenticated()
	}
	return nil
}

// CanAdminister reports whether userID owns c or holds the Community Admin
// role in it. The owner needs no member row.
func (e *Engine) CanAdminister(ctx context.Context, userID string, c *communityentity.Community) (bool, error) {
	if c.Owner == userID {
		return true, nil
	}
	m, err := e.members.Find(ctx, c.ID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find membership: %w", err)
	}
	admin, err := e.roles.GetByName(ctx, roleentity.CommunityAdmin)
	if err != nil {
		return false, fmt.Errorf("load admin role: %w", err)
	}
	return m.Role == admin.ID, nil
}

// IsMember reports whether userID owns c or has any member row in it.
func (e *Engine) IsMember(ctx context.Context, userID string, c *communityentity.Community) (bool, error) {
	if c.Owner == userID {
		return true, nil
	}
	_, err := e.members.Find(ctx, c.ID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find membership: %w", err)
	}
	return true, nil
}

// Authorize answers "may principal perform scope on c". A nil principal is
// NOT_AUTHENTICATED; a signed-in principal without permission is
// NOT_AUTHORIZED. Unknown scopes are always denied.
func (e *Engine) Authorize(ctx context.Context, principal *userentity.User, c *communityentity.Community, scope string) error {
	if err := RequireUser(principal); err != nil {
		return err
	}
	var (
		allowed bool
		err     error
	)
	switch scope {
	case roleentity.ScopeMemberAdd, roleentity.ScopeMemberRemove, roleentity.ScopeCommunityUpdate:
		allowed, err = e.CanAdminister(ctx, principal.ID, c)
	case roleentity.ScopeCommunityView:
		allowed, err = e.IsMember(ctx, principal.ID, c)
	}
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden()
	}
	return nil
}
