package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cost(v float64) *float64 { return &v }

func TestAssemble_CanonicalOrderAndTotals(t *testing.T) {
	items := []Item{
		{ID: "paper towels-package", Name: "Paper Towels", Category: SectionHousehold, EstimatedCost: cost(4)},
		{ID: "milk-cup", Name: "Milk", Category: SectionDairy, EstimatedCost: cost(2.75), IsInInventory: true},
		{ID: "onion-piece", Name: "Onion", Category: SectionProduce, EstimatedCost: cost(1.25)},
		{ID: "garlic-clove", Name: "Garlic", Category: SectionProduce, EstimatedCost: cost(0.1)},
		{ID: "sumac-teaspoon", Name: "Sumac", Category: SectionOther},
	}

	list := Assemble(items)

	require.Len(t, list.Sections, 4)
	assert.Equal(t, SectionProduce, list.Sections[0].Name)
	assert.Equal(t, SectionDairy, list.Sections[1].Name)
	assert.Equal(t, SectionHousehold, list.Sections[2].Name)
	assert.Equal(t, SectionOther, list.Sections[3].Name)

	assert.Equal(t, "Garlic", list.Sections[0].Items[0].Name)
	assert.Equal(t, "Onion", list.Sections[0].Items[1].Name)
	assert.InDelta(t, 1.35, list.Sections[0].TotalCost, 1e-9)
	assert.InDelta(t, 0, list.Sections[3].TotalCost, 1e-9)

	assert.Equal(t, 5, list.TotalItems)
	assert.InDelta(t, 8.10, list.TotalCost, 1e-9)
	assert.Equal(t, 1, list.InventoryCovered)
	assert.False(t, list.NoIngredientsNeeded)
}

func TestAssemble_UnknownCategoryGoesToOther(t *testing.T) {
	list := Assemble([]Item{{ID: "x-piece", Name: "X", Category: "Bakery"}})

	require.Len(t, list.Sections, 1)
	assert.Equal(t, SectionOther, list.Sections[0].Name)
	assert.Equal(t, SectionOther, list.Sections[0].Items[0].Category)
}

func TestAssemble_Empty(t *testing.T) {
	list := Assemble(nil)

	assert.NotNil(t, list.Sections)
	assert.Empty(t, list.Sections)
	assert.True(t, list.NoIngredientsNeeded)
	assert.Empty(t, list.Items())
}

func TestListItemsFollowsSectionOrder(t *testing.T) {
	list := Assemble([]Item{
		{ID: "b-piece", Name: "Beer", Category: SectionBeverages},
		{ID: "a-piece", Name: "Apple", Category: SectionProduce},
	})

	items := list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a-piece", items[0].ID)
	assert.Equal(t, "b-piece", items[1].ID)
}
