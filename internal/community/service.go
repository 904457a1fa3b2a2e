package community

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/community/entity"
	memberentity "github.com/ovaphlow/pitchfork/service-community-go/internal/member/entity"
	roleentity "github.com/ovaphlow/pitchfork/service-community-go/internal/role/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
)

// IDGenerator hands out new primary keys.
type IDGenerator interface {
	NewID() string
}

type Service struct {
	communities store.CommunityStore
	members     store.MemberStore
	users       store.UserStore
	roles       store.RoleStore
	ids         IDGenerator
	logger      *zap.SugaredLogger
	now         func() time.Time
}

func NewService(s store.Stores, ids IDGenerator, logger *zap.SugaredLogger) *Service {
	return &Service{
		communities: s.Communities,
		members:     s.Members,
		users:       s.Users,
		roles:       s.Roles,
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

const (
	maxNameLen           = 128
	messageNameTaken     = "Community with this name already exists."
	messageNotFound      = "Community not found."
	messageMissingAdmin  = "Could not find admin role."
	messageSlugNotUsable = "Name must contain at least one letter or digit."
)

// Create stores a community owned by ownerID and makes the owner its first
// admin member. If the membership cannot be written the community is removed
// again so that no ownerless community is left behind.
func (s *Service) Create(ctx context.Context, ownerID, name string) (*entity.Community, error) {
	switch {
	case name == "":
		return nil, apperr.New(apperr.InvalidInput, "name", "Name is required")
	case utf8.RuneCountInString(name) > maxNameLen:
		return nil, apperr.New(apperr.InvalidInput, "name", "Name cannot exceed 128 characters")
	}
	slug := GenerateSlug(name)
	if slug == "" {
		return nil, apperr.New(apperr.InvalidInput, "name", messageSlugNotUsable)
	}

	if _, err := s.communities.GetBySlug(ctx, slug); err == nil {
		return nil, apperr.Exists("name", messageNameTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	admin, err := s.roles.GetByName(ctx, roleentity.CommunityAdmin)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.Internal, "", messageMissingAdmin)
	}
	if err != nil {
		return nil, fmt.Errorf("load admin role: %w", err)
	}

	now := s.now().UTC()
	c := &entity.Community{
		ID:        s.ids.NewID(),
		Name:      name,
		Slug:      slug,
		Owner:     ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.communities.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Exists("name", messageNameTaken)
		}
		return nil, fmt.Errorf("create community: %w", err)
	}

	m := &memberentity.Member{
		ID:        s.ids.NewID(),
		Community: c.ID,
		User:      ownerID,
		Role:      admin.ID,
		CreatedAt: now,
	}
	if err := s.members.Create(ctx, m); err != nil {
		if delErr := s.communities.Delete(ctx, c.ID); delErr != nil {
			s.logger.Errorw("rollback community", "community_id", c.ID, "err", delErr)
		}
		return nil, fmt.Errorf("create owner membership: %w", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*entity.Community, error) {
	out, err := s.communities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return out, nil
}

// ListOwned returns the communities whose owner is userID.
func (s *Service) ListOwned(ctx context.Context, userID string) ([]*entity.Community, error) {
	out, err := s.communities.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned communities: %w", err)
	}
	return out, nil
}

// ListJoined returns the communities userID has a membership in, whatever
// the role.
func (s *Service) ListJoined(ctx context.Context, userID string) ([]*entity.Community, error) {
	memberships, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return []*entity.Community{}, nil
	}
	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.Community)
	}
	out, err := s.communities.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list joined communities: %w", err)
	}
	return out, nil
}

// Members lists the memberships of a community with user and role names.
// Rows pointing at a deleted user or role are left out.
func (s *Service) Members(ctx context.Context, communityID string) ([]entity.MemberDetail, error) {
	if _, err := s.communities.GetByID(ctx, communityID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("", messageNotFound)
		}
		return nil, fmt.Errorf("load community: %w", err)
	}
	rows, err := s.members.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	roles := map[string]*roleentity.Role{}
	out := make([]entity.MemberDetail, 0, len(rows))
	for _, m := range rows {
		u, err := s.users.GetByID(ctx, m.User)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load member user: %w", err)
		}
		r, ok := roles[m.Role]
		if !ok {
			r, err = s.roles.GetByID(ctx, m.Role)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("load member role: %w", err)
			}
			roles[m.Role] = r
		}
		if r == nil {
			continue
		}
		out = append(out, entity.MemberDetail{
			ID:        m.ID,
			Community: m.Community,
			User:      entity.Ref{ID: u.ID, Name: u.Name},
			Role:      entity.Ref{ID: r.ID, Name: r.Name},
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
