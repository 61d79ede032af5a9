package helpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

// MockRecipeSource is a test double for recipe.Source
type MockRecipeSource struct {
	mu        sync.Mutex
	documents map[string]*recipe.Document
	errors    map[string]error
	calls     map[string]int
}

func NewMockRecipeSource() *MockRecipeSource {
	return &MockRecipeSource{
		documents: make(map[string]*recipe.Document),
		errors:    make(map[string]error),
		calls:     make(map[string]int),
	}
}

// SetDocument makes Fetch(id) return a freshly built document on every call
func (m *MockRecipeSource) SetDocument(id string, doc *recipe.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[id] = doc
	delete(m.errors, id)
}

func (m *MockRecipeSource) SetError(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[id] = err
}

func (m *MockRecipeSource) Fetch(ctx context.Context, id string) (*recipe.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[id]++

	if err, ok := m.errors[id]; ok {
		return nil, err
	}
	doc, ok := m.documents[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown recipe %s", market.ErrDataUnavailable, id)
	}
	// Each fetch yields a new instance, like a real decode would
	copied, err := recipe.NewDocument(doc.SourceID(), doc.Premium(), doc.Requirements())
	if err != nil {
		return nil, err
	}
	return copied, nil
}

func (m *MockRecipeSource) Calls(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[id]
}

// MockSubstituteResolver is a test double for recipe.SubstituteResolver keyed by skin name
type MockSubstituteResolver struct {
	mu          sync.Mutex
	substitutes map[string][]recipe.Substitute
	calls       []recipe.SkinRequirement
}

func NewMockSubstituteResolver() *MockSubstituteResolver {
	return &MockSubstituteResolver{substitutes: make(map[string][]recipe.Substitute)}
}

// SetSubstitutes registers the substitutes returned for a requirement name
func (m *MockSubstituteResolver) SetSubstitutes(requirementName string, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := make([]recipe.Substitute, len(names))
	for i, name := range names {
		subs[i] = recipe.Substitute{Name: name}
	}
	m.substitutes[requirementName] = subs
}

func (m *MockSubstituteResolver) FindSubstitutes(ctx context.Context, requirement recipe.SkinRequirement, premium bool) []recipe.Substitute {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, requirement)
	return m.substitutes[requirement.Name]
}

func (m *MockSubstituteResolver) Calls() []recipe.SkinRequirement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recipe.SkinRequirement(nil), m.calls...)
}

// MockInventorySource is a test double for market.InventorySource
type MockInventorySource struct {
	mu    sync.Mutex
	items []market.InventoryItem
	err   error
	calls int
}

func NewMockInventorySource(items ...market.InventoryItem) *MockInventorySource {
	return &MockInventorySource{items: items}
}

func (m *MockInventorySource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockInventorySource) CurrentInventory(ctx context.Context) ([]market.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]market.InventoryItem(nil), m.items...), nil
}

func (m *MockInventorySource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requirement builds a skin requirement for tests
func Requirement(name, collection string, quality float64, price string, maxQuality float64) recipe.SkinRequirement {
	return recipe.SkinRequirement{
		Name:           name,
		Collection:     recipe.Collection{ID: 1, Name: collection},
		Rarity:         3,
		Quality:        quality,
		ReferencePrice: decimal.RequireFromString(price),
		MaxQuality:     maxQuality,
	}
}

// MustDocument builds a recipe document or panics
func MustDocument(id string, premium bool, reqs ...recipe.SkinRequirement) *recipe.Document {
	doc, err := recipe.NewDocument(id, premium, reqs)
	if err != nil {
		panic(err)
	}
	return doc
}
