package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/platinummonkey/stockroom/pkg/audit"
	"github.com/platinummonkey/stockroom/pkg/httputil"
	"github.com/platinummonkey/stockroom/pkg/observability"
)

// parseAuditFilter reads the shared action/date_from/date_to query parameters
func parseAuditFilter(r *http.Request) (audit.Filter, error) {
	filter := audit.Filter{}

	if actionStr := httputil.ParseQueryString(r, "action", ""); actionStr != "" {
		action := audit.Action(strings.ToUpper(actionStr))
		if !action.IsValid() {
			return filter, fmt.Errorf("invalid action %q: use INSERT, UPDATE, or DELETE", actionStr)
		}
		filter.Action = &action
	}

	from, err := httputil.ParseQueryTime(r, "date_from")
	if err != nil {
		return filter, err
	}
	filter.From = from

	to, err := httputil.ParseQueryTime(r, "date_to")
	if err != nil {
		return filter, err
	}
	filter.To = to

	return filter, nil
}

func (s *Server) itemAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	params, err := httputil.ParsePagination(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	page, err := s.audits.ItemHistory(r.Context(), id, params)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, page)
}

func (s *Server) globalAudit(w http.ResponseWriter, r *http.Request) {
	params, err := httputil.ParsePagination(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	filter, err := parseAuditFilter(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	page, err := s.audits.Search(r.Context(), filter, params)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, page)
}

func (s *Server) exportAudit(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	// Headers and body are only written once the full export succeeded
	var buf bytes.Buffer
	if err := s.audits.ExportCSV(r.Context(), &buf, filter); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	filename := audit.ExportFilename(time.Now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		observability.FromContext(r.Context()).WithError(err).Warn("Audit export write aborted")
		return
	}

	if s.metrics != nil {
		s.metrics.AuditExportsTotal.WithLabelValues("api").Inc()
	}
}
