package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a single inventory record. A nil Location means "no location
// recorded" and is distinct from an empty string.
type Item struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Location  *string         `json:"location,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateItemInput carries the fields for a new item
type CreateItemInput struct {
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Location *string         `json:"location,omitempty"`
}

// Validate trims name and sku in place and rejects invalid input
func (in *CreateItemInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)

	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.SKU == "" {
		return fmt.Errorf("%w: sku is required", ErrValidation)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

// UpdateItemInput carries a partial update; nil fields are left unchanged
type UpdateItemInput struct {
	Name     *string          `json:"name,omitempty"`
	SKU      *string          `json:"sku,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Location *string          `json:"location,omitempty"`
}

// HasChanges reports whether any field was supplied
func (in UpdateItemInput) HasChanges() bool {
	return in.Name != nil || in.SKU != nil || in.Quantity != nil ||
		in.Price != nil || in.Location != nil
}

// apply overlays the supplied fields onto item and validates the result
func (in UpdateItemInput) apply(item *Item) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return fmt.Errorf("%w: name is required", ErrValidation)
		}
		item.Name = name
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return fmt.Errorf("%w: sku is required", ErrValidation)
		}
		item.SKU = sku
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
		}
		item.Quantity = *in.Quantity
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		item.Price = *in.Price
	}
	if in.Location != nil {
		location := *in.Location
		item.Location = &location
	}
	return nil
}

// ItemFilter narrows item listings. Search matches name or sku as a
// case-insensitive substring.
type ItemFilter struct {
	Search *string
}
