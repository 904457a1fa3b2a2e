package community

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	memberentity "github.com/ovaphlow/pitchfork/service-community-go/internal/member/entity"
	roleentity "github.com/ovaphlow/pitchfork/service-community-go/internal/role/entity"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store/memory"
	userentity "github.com/ovaphlow/pitchfork/service-community-go/internal/user/entity"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return "id-" + strconv.Itoa(s.n)
}

type failingMembers struct {
	store.MemberStore
}

func (failingMembers) Create(context.Context, *memberentity.Member) error {
	return errors.New("disk full")
}

func seededStores(t *testing.T) store.Stores {
	t.Helper()
	s := memory.New().Stores()
	if err := s.Roles.Create(context.Background(), &roleentity.Role{ID: "r-admin", Name: roleentity.CommunityAdmin}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func kindOf(err error) apperr.Kind {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func TestCreate_OwnerBecomesAdmin(t *testing.T) {
	ctx := context.Background()
	s := seededStores(t)
	svc := NewService(s, &seqIDs{}, zap.NewNop().Sugar())

	c, err := svc.Create(ctx, "u1", "Test Group")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Slug != "test-group" || c.Owner != "u1" {
		t.Errorf("community = %+v", c)
	}
	m, err := s.Members.Find(ctx, c.ID, "u1")
	if err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if m.Role != "r-admin" {
		t.Errorf("owner role = %q, expected r-admin", m.Role)
	}
}

func TestCreate_CompensatesFailedMembership(t *testing.T) {
	ctx := context.Background()
	s := seededStores(t)
	s.Members = failingMembers{s.Members}
	svc := NewService(s, &seqIDs{}, zap.NewNop().Sugar())

	_, err := svc.Create(ctx, "u1", "Test Group")
	if err == nil {
		t.Fatal("expected error")
	}
	if kindOf(err) != "" {
		t.Errorf("membership failure should surface as an internal error, got kind %q", kindOf(err))
	}
	if _, err := s.Communities.GetBySlug(ctx, "test-group"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("community should have been removed, lookup err = %v", err)
	}
}

func TestCreate_MissingAdminRole(t *testing.T) {
	ctx := context.Background()
	s := memory.New().Stores()
	svc := NewService(s, &seqIDs{}, zap.NewNop().Sugar())

	_, err := svc.Create(ctx, "u1", "Test Group")
	if kindOf(err) != apperr.Internal {
		t.Fatalf("Create() error = %v, expected internal kind", err)
	}
	if list, _ := s.Communities.List(ctx); len(list) != 0 {
		t.Errorf("no community should be stored, got %d", len(list))
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(seededStores(t), &seqIDs{}, zap.NewNop().Sugar())
	for _, name := range []string{"", strings.Repeat("a", 129), "!!!"} {
		if _, err := svc.Create(context.Background(), "u1", name); kindOf(err) != apperr.InvalidInput {
			t.Errorf("Create(%q) error = %v, expected INVALID_INPUT", name, err)
		}
	}
}

func TestCreate_WhitespaceNameKeepsDashSlug(t *testing.T) {
	svc := NewService(seededStores(t), &seqIDs{}, zap.NewNop().Sugar())

	c, err := svc.Create(context.Background(), "u1", "   ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Slug != "-" {
		t.Errorf("slug = %q, expected %q", c.Slug, "-")
	}
}

func TestMembers_SkipsDanglingRows(t *testing.T) {
	ctx := context.Background()
	s := seededStores(t)
	svc := NewService(s, &seqIDs{}, zap.NewNop().Sugar())
	_ = s.Users.Create(ctx, &userentity.User{ID: "u1", Name: "Owner", Email: "o@x.com"})

	c, err := svc.Create(ctx, "u1", "Group")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_ = s.Members.Create(ctx, &memberentity.Member{ID: "m-ghost-user", Community: c.ID, User: "gone", Role: "r-admin"})
	_ = s.Users.Create(ctx, &userentity.User{ID: "u2", Name: "Two", Email: "t@x.com"})
	_ = s.Members.Create(ctx, &memberentity.Member{ID: "m-ghost-role", Community: c.ID, User: "u2", Role: "gone"})

	details, err := svc.Members(ctx, c.ID)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if len(details) != 1 || details[0].User.Name != "Owner" || details[0].Role.Name != roleentity.CommunityAdmin {
		t.Errorf("details = %+v", details)
	}
}
