package shopping

import "sort"

// SectionGroup is one store section of the final list.
type SectionGroup struct {
	Name      Section `json:"name"`
	Items     []Item  `json:"items"`
	TotalCost float64 `json:"total_cost"`
}

// List is the assembled shopping list.
type List struct {
	Sections            []SectionGroup `json:"sections"`
	TotalItems          int            `json:"total_items"`
	TotalCost           float64        `json:"total_cost"`
	InventoryCovered    int            `json:"inventory_covered"`
	NoIngredientsNeeded bool           `json:"no_ingredients_needed"`
}

// Items flattens the list back into section order.
func (l List) Items() []Item {
	out := make([]Item, 0, l.TotalItems)
	for _, sec := range l.Sections {
		out = append(out, sec.Items...)
	}
	return out
}

// Assemble groups items by category in canonical section order and
// computes totals. Items with an unknown category land in Other.
func Assemble(items []Item) List {
	grouped := make(map[Section][]Item)
	for _, it := range items {
		cat := it.Category
		if sectionRank(cat) == len(SectionOrder) {
			cat = SectionOther
			it.Category = cat
		}
		grouped[cat] = append(grouped[cat], it)
	}

	list := List{Sections: []SectionGroup{}}
	var allCosts []*float64
	for _, sec := range SectionOrder {
		members := grouped[sec]
		if len(members) == 0 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			if members[i].Name != members[j].Name {
				return members[i].Name < members[j].Name
			}
			return members[i].ID < members[j].ID
		})

		costs := make([]*float64, 0, len(members))
		for _, m := range members {
			costs = append(costs, m.EstimatedCost)
			if m.IsInInventory {
				list.InventoryCovered++
			}
		}
		allCosts = append(allCosts, costs...)

		list.Sections = append(list.Sections, SectionGroup{
			Name:      sec,
			Items:     members,
			TotalCost: sumCosts(costs...),
		})
		list.TotalItems += len(members)
	}

	list.TotalCost = sumCosts(allCosts...)
	list.NoIngredientsNeeded = list.TotalItems == 0
	return list
}
