package recipe

import "github.com/shopspring/decimal"

// GroupKey identifies a set of fungible requirements
type GroupKey struct {
	Collection string
	Wear       WearBucket
}

// DemandGroup aggregates the requirements sharing a collection and wear bucket.
// ReferencePrice is the highest member price: the cost basis an arbitrage must beat.
type DemandGroup struct {
	Key            GroupKey
	Quantity       int
	ReferencePrice decimal.Decimal
	Members        []SkinRequirement
}

// Representative returns the requirement used to resolve substitutes for the group
func (g *DemandGroup) Representative() SkinRequirement {
	return g.Members[0]
}

// Groups is the ordered result of grouping a requirement list.
// Order follows first appearance in the input so evaluation is reproducible.
type Groups struct {
	ordered []*DemandGroup
	byKey   map[GroupKey]*DemandGroup
}

// All returns the groups in first-appearance order
func (g *Groups) All() []*DemandGroup {
	return g.ordered
}

// Get looks a group up by key
func (g *Groups) Get(key GroupKey) (*DemandGroup, bool) {
	group, ok := g.byKey[key]
	return group, ok
}

// Len returns the number of groups
func (g *Groups) Len() int {
	return len(g.ordered)
}

// Group partitions requirements by (collection, wear bucket) in a single pass,
// counting members and keeping the running maximum reference price.
func Group(requirements []SkinRequirement) *Groups {
	groups := &Groups{byKey: make(map[GroupKey]*DemandGroup)}

	for _, req := range requirements {
		key := GroupKey{Collection: req.Collection.Name, Wear: req.Wear()}

		group, ok := groups.byKey[key]
		if !ok {
			group = &DemandGroup{Key: key, ReferencePrice: req.ReferencePrice}
			groups.byKey[key] = group
			groups.ordered = append(groups.ordered, group)
		}

		group.Quantity++
		group.Members = append(group.Members, req)
		if req.ReferencePrice.GreaterThan(group.ReferencePrice) {
			group.ReferencePrice = req.ReferencePrice
		}
	}

	return groups
}
