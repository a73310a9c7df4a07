package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/stockroom/pkg/auth"
	"github.com/platinummonkey/stockroom/pkg/query"
	"github.com/platinummonkey/stockroom/pkg/rbac"
)

// stubStore records the actor of the last mutation and returns zero values
type stubStore struct {
	lastActor string
}

func (s *stubStore) Create(ctx context.Context, input CreateItemInput, actor string) (*Item, error) {
	s.lastActor = actor
	return &Item{ID: uuid.New()}, nil
}

func (s *stubStore) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return &Item{ID: id}, nil
}

func (s *stubStore) List(ctx context.Context, filter ItemFilter, params query.Params) (*query.Page[*Item], error) {
	return query.NewPage([]*Item{}, 0, params), nil
}

func (s *stubStore) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput, actor string) (*Item, error) {
	s.lastActor = actor
	return &Item{ID: id}, nil
}

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	s.lastActor = actor
	return nil
}

func roleCtx(role rbac.Role) context.Context {
	return auth.WithClaims(context.Background(), &auth.Claims{Username: "user-" + string(role), Role: role})
}

func TestServiceRoleGating(t *testing.T) {
	svc := NewService(&stubStore{})
	id := uuid.New()

	tests := []struct {
		name string
		ctx  context.Context
		call func(ctx context.Context) error
		deny bool
	}{
		{"viewer lists", roleCtx(rbac.RoleViewer), func(ctx context.Context) error {
			_, err := svc.List(ctx, ItemFilter{}, query.Params{})
			return err
		}, false},
		{"viewer reads", roleCtx(rbac.RoleViewer), func(ctx context.Context) error {
			_, err := svc.Get(ctx, id)
			return err
		}, false},
		{"viewer cannot create", roleCtx(rbac.RoleViewer), func(ctx context.Context) error {
			_, err := svc.Create(ctx, CreateItemInput{})
			return err
		}, true},
		{"viewer cannot update", roleCtx(rbac.RoleViewer), func(ctx context.Context) error {
			_, err := svc.Update(ctx, id, UpdateItemInput{})
			return err
		}, true},
		{"viewer cannot delete", roleCtx(rbac.RoleViewer), func(ctx context.Context) error {
			return svc.Delete(ctx, id)
		}, true},
		{"manager creates", roleCtx(rbac.RoleManager), func(ctx context.Context) error {
			_, err := svc.Create(ctx, CreateItemInput{})
			return err
		}, false},
		{"manager cannot delete", roleCtx(rbac.RoleManager), func(ctx context.Context) error {
			return svc.Delete(ctx, id)
		}, true},
		{"admin deletes", roleCtx(rbac.RoleAdmin), func(ctx context.Context) error {
			return svc.Delete(ctx, id)
		}, false},
		{"unauthenticated denied", context.Background(), func(ctx context.Context) error {
			_, err := svc.List(ctx, ItemFilter{}, query.Params{})
			return err
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(tt.ctx)
			if tt.deny {
				assert.ErrorIs(t, err, rbac.ErrUnauthorized)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServiceActorIsUsername(t *testing.T) {
	stub := &stubStore{}
	svc := NewService(stub)

	ctx := auth.WithClaims(context.Background(), &auth.Claims{Username: "alex", Role: rbac.RoleAdmin})
	require.NoError(t, svc.Delete(ctx, uuid.New()))
	assert.Equal(t, "alex", stub.lastActor)
}
