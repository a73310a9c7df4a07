package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/stockroom/pkg/audit"
)

func strptr(s string) *string { return &s }

func testItem() *Item {
	return &Item{
		ID:       uuid.New(),
		Name:     "Widget",
		SKU:      "W-1",
		Quantity: 5,
		Price:    decimal.RequireFromString("10.00"),
	}
}

func TestDiffItemsInsertDelete(t *testing.T) {
	item := testItem()

	diff := DiffItems(nil, item)
	assert.Equal(t, audit.ActionInsert, diff.Action)
	assert.Nil(t, diff.Fields)

	diff = DiffItems(item, nil)
	assert.Equal(t, audit.ActionDelete, diff.Action)
	assert.Nil(t, diff.Fields)
}

func TestDiffItemsUpdate(t *testing.T) {
	before := testItem()
	after := *before
	after.Name = "Gadget"
	after.Quantity = 8

	diff := DiffItems(before, &after)
	require.Equal(t, audit.ActionUpdate, diff.Action)
	assert.Len(t, diff.Fields, 2)
	assert.Equal(t, audit.FieldChange{Old: "Widget", New: "Gadget"}, diff.Fields["name"])
	assert.Equal(t, audit.FieldChange{Old: 5, New: 8}, diff.Fields["quantity"])
}

func TestDiffItemsNoChanges(t *testing.T) {
	before := testItem()
	after := *before

	diff := DiffItems(before, &after)
	assert.Equal(t, audit.ActionUpdate, diff.Action)
	assert.NotNil(t, diff.Fields)
	assert.Empty(t, diff.Fields)
}

func TestDiffItemsPriceComparedByValue(t *testing.T) {
	before := testItem()
	after := *before
	after.Price = decimal.RequireFromString("10.0")

	diff := DiffItems(before, &after)
	assert.Empty(t, diff.Fields, "10.00 and 10.0 are the same price")

	after.Price = decimal.RequireFromString("12.50")
	diff = DiffItems(before, &after)
	assert.Equal(t, audit.FieldChange{Old: "10.00", New: "12.50"}, diff.Fields["price"])
}

func TestDiffItemsLocation(t *testing.T) {
	tests := []struct {
		name       string
		before     *string
		after      *string
		wantChange bool
		wantOld    interface{}
		wantNew    interface{}
	}{
		{"nil to set", nil, strptr("Aisle 3"), true, nil, "Aisle 3"},
		{"set to nil", strptr("Aisle 3"), nil, true, "Aisle 3", nil},
		{"nil to empty differs", nil, strptr(""), true, nil, ""},
		{"both nil", nil, nil, false, nil, nil},
		{"same value", strptr("Aisle 3"), strptr("Aisle 3"), false, nil, nil},
		{"changed", strptr("Aisle 3"), strptr("Aisle 4"), true, "Aisle 3", "Aisle 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testItem()
			before.Location = tt.before
			after := *before
			after.Location = tt.after

			diff := DiffItems(before, &after)
			if !tt.wantChange {
				assert.Empty(t, diff.Fields)
				return
			}
			require.Contains(t, diff.Fields, "location")
			assert.Equal(t, tt.wantOld, diff.Fields["location"].Old)
			assert.Equal(t, tt.wantNew, diff.Fields["location"].New)
		})
	}
}
