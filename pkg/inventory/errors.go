package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no item exists with the given ID
	ErrNotFound = errors.New("item not found")

	// ErrValidation means the input failed validation
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateSKU means another item already uses the SKU
	ErrDuplicateSKU = errors.New("sku already in use")

	// ErrNoChanges means an update supplied no fields at all. It is a
	// validation failure, so errors.Is(err, ErrValidation) holds.
	ErrNoChanges = fmt.Errorf("%w: no fields to update", ErrValidation)
)
