package inventory

import (
	"github.com/platinummonkey/stockroom/pkg/audit"
)

// DiffItems computes the audit diff between two snapshots of an item. A nil
// before is an insert, a nil after is a delete; both present is an update
// whose Fields holds {old,new} pairs for every field whose value changed.
// An update that changed nothing yields an empty, non-nil Fields map.
//
// Prices are compared by value, so "10.00" equals "10.0", and rendered
// with two decimal places. A nil location differs from an empty string.
func DiffItems(before, after *Item) audit.DiffResult {
	if before == nil {
		return audit.DiffResult{Action: audit.ActionInsert}
	}
	if after == nil {
		return audit.DiffResult{Action: audit.ActionDelete}
	}

	fields := make(map[string]audit.FieldChange)

	if before.Name != after.Name {
		fields["name"] = audit.FieldChange{Old: before.Name, New: after.Name}
	}
	if before.SKU != after.SKU {
		fields["sku"] = audit.FieldChange{Old: before.SKU, New: after.SKU}
	}
	if before.Quantity != after.Quantity {
		fields["quantity"] = audit.FieldChange{Old: before.Quantity, New: after.Quantity}
	}
	if !before.Price.Equal(after.Price) {
		fields["price"] = audit.FieldChange{Old: before.Price.StringFixed(2), New: after.Price.StringFixed(2)}
	}
	if !equalLocation(before.Location, after.Location) {
		fields["location"] = audit.FieldChange{Old: locationValue(before.Location), New: locationValue(after.Location)}
	}

	return audit.DiffResult{Action: audit.ActionUpdate, Fields: fields}
}

func equalLocation(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func locationValue(loc *string) interface{} {
	if loc == nil {
		return nil
	}
	return *loc
}
