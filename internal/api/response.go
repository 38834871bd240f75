package api

import (
	"errors"
	"net/http"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/reconcile"
	"github.com/Veraticus/policy-sync/internal/storage"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/goccy/go-json"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("Failed to encode response", "error", err)
	}
}

func (s *Server) ok(w http.ResponseWriter, data any) {
	s.writeJSON(w, http.StatusOK, Response{Status: "ok", Data: data})
}

// fail maps an error to a status code. data, when set, is returned with the
// error, such as the partial outcome of an aborted import.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, data any) {
	status := statusFor(err)
	msg := err.Error()
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		msg = userErr.UserMessage
	}
	if status >= http.StatusInternalServerError {
		common.FromContext(r.Context()).Error("Request failed", "error", err)
	}
	s.writeJSON(w, status, Response{Status: "error", Message: msg, Data: data})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNoOperator):
		return http.StatusUnauthorized
	case errors.Is(err, reconcile.ErrScopeNotOwned):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tabular.ErrNoHeader),
		errors.Is(err, tabular.ErrUnsupportedFormat),
		errors.Is(err, tabular.ErrNoSheets),
		errors.Is(err, storage.ErrInvalidDateRange),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDuplicateEntry):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
