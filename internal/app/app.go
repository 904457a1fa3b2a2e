// Package app wires configuration, storage, services and HTTP handlers into
// one explicit context built at startup.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/community"
	communityrepo "github.com/ovaphlow/pitchfork/service-community-go/internal/community/repo"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/member"
	memberrepo "github.com/ovaphlow/pitchfork/service-community-go/internal/member/repo"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/role"
	rolerepo "github.com/ovaphlow/pitchfork/service-community-go/internal/role/repo"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store/memory"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-community-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-community-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-community-go/pkg/utilities"
)

// App is the application context. Everything in it is read-only after New
// returns and safe to share between requests.
type App struct {
	Config *config.Config
	Logger *zap.SugaredLogger
	Stores store.Stores

	Auth        *session.Authenticator
	RoleService *role.Service

	UserHandler      *user.Handler
	CommunityHandler *community.Handler
	MemberHandler    *member.Handler
	RoleHandler      *role.Handler
}

// New builds services and handlers on top of the given stores.
func New(cfg *config.Config, stores store.Stores, logger *zap.SugaredLogger) *App {
	ids := utilities.NewIDGenerator(cfg.SnowflakeNode)
	tokens := session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	engine := access.NewEngine(stores.Members, stores.Roles)

	userSvc := user.NewService(stores.Users, user.Pbkdf2Hasher{}, tokens, ids)
	roleSvc := role.NewService(stores.Roles, ids, logger)
	communitySvc := community.NewService(stores, ids, logger)
	memberSvc := member.NewService(stores, engine, ids)

	return &App{
		Config:           cfg,
		Logger:           logger,
		Stores:           stores,
		Auth:             session.NewAuthenticator(tokens, stores.Users, logger),
		RoleService:      roleSvc,
		UserHandler:      user.NewHandler(userSvc, logger),
		CommunityHandler: community.NewHandler(communitySvc, logger),
		MemberHandler:    member.NewHandler(memberSvc, logger),
		RoleHandler:      role.NewHandler(roleSvc, logger),
	}
}

type tableEnsurer interface {
	EnsureTable(ctx context.Context) error
}

// OpenStores returns the backend selected by cfg.Store. For Postgres it
// connects, creates missing tables and returns the pool so the caller can
// close it; for memory the pool is nil.
func OpenStores(ctx context.Context, cfg *config.Config) (store.Stores, *sqlx.DB, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New().Stores(), nil, nil
	case config.StorePostgres:
	default:
		return store.Stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.Store)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return store.Stores{}, nil, err
	}
	users := userrepo.NewUserRepo(db)
	roles := rolerepo.NewRoleRepo(db)
	communities := communityrepo.NewCommunityRepo(db)
	members := memberrepo.NewMemberRepo(db)
	for _, t := range []tableEnsurer{users, roles, communities, members} {
		if err := t.EnsureTable(ctx); err != nil {
			_ = db.Close()
			return store.Stores{}, nil, fmt.Errorf("ensure tables: %w", err)
		}
	}
	return store.Stores{Users: users, Roles: roles, Communities: communities, Members: members}, db, nil
}
