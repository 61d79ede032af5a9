package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BuyIntent is the decision to bid for one demand group.
// Every target is an equally acceptable way to fulfil the group.
type BuyIntent struct {
	Targets   []string
	Quantity  int
	UnitPrice decimal.Decimal
	// ReferencePrice is the recipe cost basis the intent undercuts
	ReferencePrice decimal.Decimal
}

// Validate checks the intent is placeable
func (i BuyIntent) Validate() error {
	if len(i.Targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrInvalidOrder)
	}
	if i.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidOrder, i.Quantity)
	}
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: negative price %s", ErrInvalidOrder, i.UnitPrice)
	}
	return nil
}

// ActiveOrder is one outstanding buy order tracked by the ledger
type ActiveOrder struct {
	id        string
	itemName  string
	quantity  int
	unitPrice decimal.Decimal
}

// NewActiveOrder creates an active order record for a placed order
func NewActiveOrder(id, itemName string, quantity int, unitPrice decimal.Decimal) (*ActiveOrder, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: order id cannot be empty", ErrInvalidOrder)
	}
	return &ActiveOrder{
		id:        id,
		itemName:  itemName,
		quantity:  quantity,
		unitPrice: unitPrice,
	}, nil
}

func (o *ActiveOrder) ID() string                 { return o.id }
func (o *ActiveOrder) ItemName() string           { return o.itemName }
func (o *ActiveOrder) Quantity() int              { return o.quantity }
func (o *ActiveOrder) UnitPrice() decimal.Decimal { return o.unitPrice }

func (o *ActiveOrder) String() string {
	return fmt.Sprintf("%s: %d x %s @ %s", o.id, o.quantity, o.itemName, o.unitPrice.StringFixed(2))
}

// PlacementResult describes what happened to one placement request.
// Simulated results carry no order: nothing exists on the marketplace to track.
type PlacementResult struct {
	ItemName  string
	Order     *ActiveOrder
	Simulated bool
	Err       error
}

// ListingCandidate is a held item that violates a recipe's float tolerance
type ListingCandidate struct {
	Item       InventoryItem
	MaxQuality float64
}
