package audit

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/platinummonkey/stockroom/pkg/auth"
	"github.com/platinummonkey/stockroom/pkg/query"
	"github.com/platinummonkey/stockroom/pkg/rbac"
)

// Service gates audit reads and exports behind role checks. The caller's
// identity comes from the request context; requests that never passed
// authentication are denied.
type Service struct {
	log *Log
}

// NewService creates an audit service over the given log
func NewService(log *Log) *Service {
	return &Service{log: log}
}

func requireOp(ctx context.Context, op rbac.Operation) error {
	claims := auth.FromContext(ctx)
	if claims == nil {
		return rbac.ErrUnauthorized
	}
	return rbac.Require(claims.Role, op)
}

// ItemHistory returns one item's audit trail, newest first
func (s *Service) ItemHistory(ctx context.Context, itemID uuid.UUID, params query.Params) (*query.Page[*Entry], error) {
	if err := requireOp(ctx, rbac.OpReadItemAudit); err != nil {
		return nil, err
	}
	return s.log.ForItem(ctx, itemID, params)
}

// Search returns the global audit trail narrowed by filter, newest first
func (s *Service) Search(ctx context.Context, filter Filter, params query.Params) (*query.Page[*Entry], error) {
	if err := requireOp(ctx, rbac.OpReadGlobalAudit); err != nil {
		return nil, err
	}
	return s.log.Query(ctx, filter, params)
}

// ExportCSV writes all entries matching filter to w as CSV
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, filter Filter) error {
	if err := requireOp(ctx, rbac.OpExportAudit); err != nil {
		return err
	}
	entries, err := s.log.Export(ctx, filter)
	if err != nil {
		return err
	}
	return WriteCSV(w, entries)
}
