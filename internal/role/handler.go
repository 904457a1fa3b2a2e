package role

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-community-go/pkg/response"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest is the body of POST v1/role.
type CreateRequest struct {
	Name string `json:"name"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid role payload", "err", err)
		response.Error(w, h.logger, apperr.New(apperr.InvalidInput, "", "Request body must be a JSON object."))
		return
	}
	role, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		response.Error(w, h.logger, err, "op", "create role")
		return
	}
	response.OK(w, http.StatusCreated, role, nil)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.List(r.Context())
	if err != nil {
		response.Error(w, h.logger, err, "op", "list roles")
		return
	}
	response.OK(w, http.StatusOK, roles, response.NewListMeta(len(roles)))
}
