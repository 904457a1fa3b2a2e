package app

import (
	"net/http"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-community-go/pkg/response"
)

// Routes builds the route table and wraps it with the middleware chain.
// Registration order matters: literal patterns are listed before captures
// that would also match them.
func (a *App) Routes() http.Handler {
	t := router.NewTable()

	t.HandleFunc("health", http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
	})

	t.HandleFunc("v1/auth/signup", http.MethodPost, a.UserHandler.Signup)
	t.HandleFunc("v1/auth/signin", http.MethodPost, a.UserHandler.Signin)
	t.HandleFunc("v1/auth/me", http.MethodGet, a.UserHandler.Me)

	t.HandleFunc("v1/community", http.MethodPost, a.CommunityHandler.Create)
	t.HandleFunc("v1/community", http.MethodGet, a.CommunityHandler.List)
	t.HandleFunc("v1/community/me/owner", http.MethodGet, a.CommunityHandler.ListOwned)
	t.HandleFunc("v1/community/me/member", http.MethodGet, a.CommunityHandler.ListJoined)
	t.HandleFunc("v1/community/{id}/members", http.MethodGet, a.CommunityHandler.Members)

	t.HandleFunc("v1/member", http.MethodPost, a.MemberHandler.Add)
	t.HandleFunc("v1/member/{id}", http.MethodDelete, a.MemberHandler.Remove)

	t.HandleFunc("v1/role", http.MethodPost, a.RoleHandler.Create)
	t.HandleFunc("v1/role", http.MethodGet, a.RoleHandler.List)

	t.HandleFunc("users", http.MethodGet, a.UserHandler.List)
	t.HandleFunc("users", http.MethodPost, a.UserHandler.Create)
	t.HandleFunc("users/{id}", http.MethodGet, a.UserHandler.Get)

	return router.Chain(t,
		router.RequestIDMiddleware(),
		router.LoggingMiddleware(a.Logger),
		router.RecoverMiddleware(a.Logger),
		router.CORSMiddleware(a.Config.CORSOrigins),
		router.SecurityHeadersMiddleware(),
		router.AuthMiddleware(a.Auth),
	)
}
