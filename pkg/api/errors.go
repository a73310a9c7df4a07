package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/stockroom/pkg/httputil"
	"github.com/platinummonkey/stockroom/pkg/inventory"
	"github.com/platinummonkey/stockroom/pkg/observability"
	"github.com/platinummonkey/stockroom/pkg/rbac"
)

// writeDomainError maps service errors onto HTTP status codes. Unknown
// errors become opaque 500s; their detail goes to the log, not the client.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, inventory.ErrValidation):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, rbac.ErrUnauthorized):
		if s.metrics != nil {
			s.metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
		}
		httputil.WriteForbidden(w, "insufficient role")
	case errors.Is(err, inventory.ErrNotFound):
		httputil.WriteNotFoundError(w, "item not found")
	case errors.Is(err, inventory.ErrDuplicateSKU):
		httputil.WriteConflict(w, err.Error())
	default:
		observability.FromContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).Error("Request failed")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
