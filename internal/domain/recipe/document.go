package recipe

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection identifies the case or collection a skin drops from
type Collection struct {
	ID   int
	Name string
}

// SkinRequirement is one input item of a trade-up recipe (value object)
type SkinRequirement struct {
	Name           string
	Collection     Collection
	Rarity         int
	Quality        float64
	ReferencePrice decimal.Decimal
	MaxQuality     float64
}

// Wear returns the wear bucket of the requirement's float value
func (r SkinRequirement) Wear() WearBucket {
	return Classify(r.Quality)
}

// Document is an immutable snapshot of one fetched recipe.
// An unavailable document stands in for a failed fetch and contributes nothing.
type Document struct {
	sourceID     string
	premium      bool
	requirements []SkinRequirement
	available    bool
}

// NewDocument creates a recipe document, rejecting an empty requirement list
func NewDocument(sourceID string, premium bool, requirements []SkinRequirement) (*Document, error) {
	if len(requirements) == 0 {
		return nil, ErrEmptyRecipe
	}

	reqs := make([]SkinRequirement, len(requirements))
	copy(reqs, requirements)

	return &Document{
		sourceID:     sourceID,
		premium:      premium,
		requirements: reqs,
		available:    true,
	}, nil
}

// UnavailableDocument returns the placeholder used when a recipe could not be fetched
func UnavailableDocument(sourceID string) *Document {
	return &Document{sourceID: sourceID}
}

// SourceID returns the API identifier the document was fetched under
func (d *Document) SourceID() string {
	return d.sourceID
}

// Premium reports whether the recipe uses StatTrak inputs
func (d *Document) Premium() bool {
	return d.premium
}

// Available reports whether the document holds fetched data
func (d *Document) Available() bool {
	return d.available
}

// Requirements returns a copy of the requirement list
func (d *Document) Requirements() []SkinRequirement {
	reqs := make([]SkinRequirement, len(d.requirements))
	copy(reqs, d.requirements)
	return reqs
}

// CacheEntry pairs a document with the moment it was fetched
type CacheEntry struct {
	Document  *Document
	FetchedAt time.Time
}

// IsFresh reports whether the entry is still inside the expiry window at now
func (e CacheEntry) IsFresh(now time.Time, expiry time.Duration) bool {
	return now.Sub(e.FetchedAt) < expiry
}
