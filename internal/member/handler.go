package member

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

// AddRequest is the body of POST v1/member.
type AddRequest struct {
	Community string `json:"community"`
	User      string `json:"user"`
	Role      string `json:"role"`
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	u := session.UserFrom(r.Context())
	if err := access.RequireUser(u); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid member payload", "err", err)
		response.Error(w, h.logger, apperr.New(apperr.InvalidInput, "", "Request body must be a JSON object."))
		return
	}
	m, err := h.svc.Add(r.Context(), u, AddInput(req))
	if err != nil {
		response.Error(w, h.logger, err, "op", "add member", "user_id", u.ID)
		return
	}
	response.OK(w, http.StatusCreated, m, nil)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	u := session.UserFrom(r.Context())
	if err := h.svc.Remove(r.Context(), u, router.Param(r, 0)); err != nil {
		response.Error(w, h.logger, err, "op", "remove member")
		return
	}
	response.Empty(w, http.StatusOK)
}
