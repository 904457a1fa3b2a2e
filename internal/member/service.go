package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	communityentity "github.com/ovaphlow/pitchfork/service-community-go/internal/community/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/member/entity"
	roleentity "github.com/ovaphlow/pitchfork/service-community-go/internal/role/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
	userentity "github.com/ovaphlow/pitchfork/service-community-go/internal/user/entity"
)

// IDGenerator hands out new primary keys.
type IDGenerator interface {
	NewID() string
}

// Service adds and removes community memberships on behalf of a principal.
type Service struct {
	members     store.MemberStore
	communities store.CommunityStore
	users       store.UserStore
	roles       store.RoleStore
	engine      *access.Engine
	ids         IDGenerator
	now         func() time.Time
}

func NewService(s store.Stores, engine *access.Engine, ids IDGenerator) *Service {
	return &Service{
		members:     s.Members,
		communities: s.Communities,
		users:       s.Users,
		roles:       s.Roles,
		engine:      engine,
		ids:         ids,
		now:         time.Now,
	}
}

const messageAlreadyMember = "User is already added in the community."

// AddInput names the membership to create.
type AddInput struct {
	Community string
	User      string
	Role      string
}

// Add creates a membership. Checks run in a fixed order: sign-in, input,
// community, permission, user, role, uniqueness.
func (s *Service) Add(ctx context.Context, principal *userentity.User, in AddInput) (*entity.Member, error) {
	if err := access.RequireUser(principal); err != nil {
		return nil, err
	}

	var v apperr.Validation
	if in.Community == "" {
		v.Add("community", "Community is required")
	}
	if in.User == "" {
		v.Add("user", "User is required")
	}
	if in.Role == "" {
		v.Add("role", "Role is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	c, err := s.community(ctx, in.Community)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, principal, c, roleentity.ScopeMemberAdd); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, in.User); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("user", "User not found.")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if _, err := s.roles.GetByID(ctx, in.Role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("role", "Role not found.")
		}
		return nil, fmt.Errorf("load role: %w", err)
	}

	if _, err := s.members.Find(ctx, in.Community, in.User); err == nil {
		return nil, apperr.Exists("", messageAlreadyMember)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	m := &entity.Member{
		ID:        s.ids.NewID(),
		Community: in.Community,
		User:      in.User,
		Role:      in.Role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.members.Create(ctx, m); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Exists("", messageAlreadyMember)
		}
		return nil, fmt.Errorf("create member: %w", err)
	}
	return m, nil
}

// Remove deletes a membership by id. The community owner and its admins may
// remove anyone, including themselves.
func (s *Service) Remove(ctx context.Context, principal *userentity.User, memberID string) error {
	if err := access.RequireUser(principal); err != nil {
		return err
	}
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("", "Member not found.")
		}
		return fmt.Errorf("load member: %w", err)
	}
	c, err := s.community(ctx, m.Community)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(ctx, principal, c, roleentity.ScopeMemberRemove); err != nil {
		return err
	}
	if err := s.members.Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

func (s *Service) community(ctx context.Context, id string) (*communityentity.Community, error) {
	c, err := s.communities.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("community", "Community not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("load community: %w", err)
	}
	return c, nil
}
