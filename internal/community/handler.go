package community

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

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest is the body of POST v1/community.
type CreateRequest struct {
	Name string `json:"name"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u := session.UserFrom(r.Context())
	if err := access.RequireUser(u); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid community payload", "err", err)
		response.Error(w, h.logger, apperr.New(apperr.InvalidInput, "", "Request body must be a JSON object."))
		return
	}
	c, err := h.svc.Create(r.Context(), u.ID, req.Name)
	if err != nil {
		response.Error(w, h.logger, err, "op", "create community", "user_id", u.ID)
		return
	}
	response.OK(w, http.StatusCreated, c, nil)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		response.Error(w, h.logger, err, "op", "list communities")
		return
	}
	response.OK(w, http.StatusOK, out, response.NewListMeta(len(out)))
}

func (h *Handler) ListOwned(w http.ResponseWriter, r *http.Request) {
	u := session.UserFrom(r.Context())
	if err := access.RequireUser(u); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	out, err := h.svc.ListOwned(r.Context(), u.ID)
	if err != nil {
		response.Error(w, h.logger, err, "op", "list owned communities")
		return
	}
	response.OK(w, http.StatusOK, out, response.NewListMeta(len(out)))
}

func (h *Handler) ListJoined(w http.ResponseWriter, r *http.Request) {
	u := session.UserFrom(r.Context())
	if err := access.RequireUser(u); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	out, err := h.svc.ListJoined(r.Context(), u.ID)
	if err != nil {
		response.Error(w, h.logger, err, "op", "list joined communities")
		return
	}
	response.OK(w, http.StatusOK, out, response.NewListMeta(len(out)))
}

func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Members(r.Context(), router.Param(r, 0))
	if err != nil {
		response.Error(w, h.logger, err, "op", "list community members")
		return
	}
	response.OK(w, http.StatusOK, out, response.NewListMeta(len(out)))
}
