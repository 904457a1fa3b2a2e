package role

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/role/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
)

// IDGenerator hands out new primary keys.
type IDGenerator interface {
	NewID() string
}

type Service struct {
	roles  store.RoleStore
	ids    IDGenerator
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewService(roles store.RoleStore, ids IDGenerator, logger *zap.SugaredLogger) *Service {
	return &Service{roles: roles, ids: ids, logger: logger, now: time.Now}
}

const messageRoleExists = "Role with this name already exists."

// Create stores a role with no scopes.
func (s *Service) Create(ctx context.Context, name string) (*entity.Role, error) {
	switch {
	case name == "":
		return nil, apperr.New(apperr.InvalidInput, "name", "Name is required")
	case utf8.RuneCountInString(name) > 64:
		return nil, apperr.New(apperr.InvalidInput, "name", "Name cannot exceed 64 characters")
	}
	if _, err := s.roles.GetByName(ctx, name); err == nil {
		return nil, apperr.Exists("name", messageRoleExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check role name: %w", err)
	}
	r := s.newRole(name, []string{})
	if err := s.roles.Create(ctx, r); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Exists("name", messageRoleExists)
		}
		return nil, fmt.Errorf("create role: %w", err)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]*entity.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// EnsureDefaults seeds the built-in roles that are missing. Losing an insert
// race to another instance counts as success.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	for _, def := range entity.Defaults() {
		_, err := s.roles.GetByName(ctx, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup role %q: %w", def.Name, err)
		}
		r := s.newRole(def.Name, def.Scopes)
		if err := s.roles.Create(ctx, r); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return fmt.Errorf("seed role %q: %w", def.Name, err)
		}
		s.logger.Infow("seeded role", "name", r.Name, "id", r.ID)
	}
	return nil
}

func (s *Service) newRole(name string, scopes []string) *entity.Role {
	now := s.now().UTC()
	return &entity.Role{ID: s.ids.NewID(), Name: name, Scopes: scopes, CreatedAt: now, UpdatedAt: now}
}
