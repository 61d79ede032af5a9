package recipe

import "context"

// Source fetches recipe documents by their API identifier.
// Implemented by the TradeUpSpy adapter.
type Source interface {
	Fetch(ctx context.Context, id string) (*Document, error)
}

// Substitute is an item interchangeable with a demand group for pricing purposes
type Substitute struct {
	Name string
}

// SubstituteResolver finds the items interchangeable with a requirement.
// It never fails the caller: internal errors degrade to an empty result.
type SubstituteResolver interface {
	FindSubstitutes(ctx context.Context, requirement SkinRequirement, premium bool) []Substitute
}
