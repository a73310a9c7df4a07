package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/platinummonkey/stockroom/pkg/auth"
	"github.com/platinummonkey/stockroom/pkg/query"
	"github.com/platinummonkey/stockroom/pkg/rbac"
)

// Service gates every store operation with a role check before it touches
// storage. The caller's username becomes the audit actor for mutations.
type Service struct {
	store ItemStore
}

// NewService creates an inventory service over the given store
func NewService(store ItemStore) *Service {
	return &Service{store: store}
}

func claimsFor(ctx context.Context, op rbac.Operation) (*auth.Claims, error) {
	claims := auth.FromContext(ctx)
	if claims == nil {
		return nil, rbac.ErrUnauthorized
	}
	if err := rbac.Require(claims.Role, op); err != nil {
		return nil, err
	}
	return claims, nil
}

// Create adds a new item; manager or admin only
func (s *Service) Create(ctx context.Context, input CreateItemInput) (*Item, error) {
	claims, err := claimsFor(ctx, rbac.OpCreateItem)
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, input, claims.Username)
}

// Get returns one item; any authenticated role
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	if _, err := claimsFor(ctx, rbac.OpReadItem); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// List returns a page of items; any authenticated role
func (s *Service) List(ctx context.Context, filter ItemFilter, params query.Params) (*query.Page[*Item], error) {
	if _, err := claimsFor(ctx, rbac.OpListItems); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filter, params)
}

// Update applies a partial update; manager or admin only
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*Item, error) {
	claims, err := claimsFor(ctx, rbac.OpUpdateItem)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, input, claims.Username)
}

// Delete removes an item; admin only
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	claims, err := claimsFor(ctx, rbac.OpDeleteItem)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, id, claims.Username)
}
