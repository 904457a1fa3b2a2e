package user

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-community-go/pkg/response"
)

// Handler exposes the auth and user endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SignupRequest is the body of POST v1/auth/signup and POST users.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest is the body of POST v1/auth/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenMeta struct {
	AccessToken string `json:"access_token"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.New(apperr.InvalidInput, "", "Request body must be a JSON object.")
	}
	return nil
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decode(r, &req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		response.Error(w, h.logger, err)
		return
	}
	sess, err := h.svc.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Error(w, h.logger, err, "op", "signup")
		return
	}
	response.OK(w, http.StatusCreated, sess.User.Profile(), tokenMeta{AccessToken: sess.AccessToken})
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := decode(r, &req); err != nil {
		h.logger.Debugw("invalid signin payload", "err", err)
		response.Error(w, h.logger, err)
		return
	}
	sess, err := h.svc.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debugw("signin failed", "err", err)
		response.Error(w, h.logger, err, "op", "signin")
		return
	}
	response.OK(w, http.StatusOK, sess.User.Profile(), tokenMeta{AccessToken: sess.AccessToken})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := session.UserFrom(r.Context())
	if err := access.RequireUser(u); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, u.Profile(), nil)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		response.Error(w, h.logger, err, "op", "list users")
		return
	}
	response.OK(w, http.StatusOK, users, response.NewListMeta(len(users)))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), router.Param(r, 0))
	if err != nil {
		response.Error(w, h.logger, err, "op", "get user")
		return
	}
	response.OK(w, http.StatusOK, u, nil)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	u, err := h.svc.Create(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Error(w, h.logger, err, "op", "create user")
		return
	}
	response.OK(w, http.StatusCreated, u, nil)
}
