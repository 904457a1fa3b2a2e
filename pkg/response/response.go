package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
)

// Envelope is the body shape of every response.
type Envelope struct {
	Status  bool            `json:"status"`
	Content *Content        `json:"content,omitempty"`
	Errors  []apperr.Detail `json:"errors,omitempty"`
}

// Content wraps the payload and optional metadata.
type Content struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// ListMeta is the metadata attached to collection responses.
type ListMeta struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
	Page  int `json:"page"`
}

// NewListMeta describes a single unpaged result set.
func NewListMeta(total int) ListMeta {
	return ListMeta{Total: total, Pages: 1, Page: 1}
}

// Write encodes env with the given status code.
func Write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a successful envelope. meta may be nil.
func OK(w http.ResponseWriter, status int, data any, meta any) {
	Write(w, status, Envelope{Status: true, Content: &Content{Data: data, Meta: meta}})
}

// Empty writes {"status":true} without content.
func Empty(w http.ResponseWriter, status int) {
	Write(w, status, Envelope{Status: true})
}

// Error converts err into exactly one envelope. Typed errors keep their
// details; anything else is logged and replaced with a generic entry.
func Error(w http.ResponseWriter, logger *zap.SugaredLogger, err error, kv ...any) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperr.Internal {
			logger.Errorw("request failed", append(kv, "err", err)...)
		}
		Write(w, appErr.Status(), Envelope{Status: false, Errors: appErr.Details})
		return
	}
	logger.Errorw("unexpected error", append(kv, "err", err)...)
	Write(w, http.StatusInternalServerError, Envelope{
		Status: false,
		Errors: []apperr.Detail{{Message: "Internal Server Error", Code: apperr.Internal}},
	})
}
