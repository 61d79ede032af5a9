package market

import "github.com/shopspring/decimal"

// InventoryItem is a snapshot of one held item.
// Quality is zero when the inventory source has no float data for the asset.
type InventoryItem struct {
	AssetID        string
	Name           string
	MarketHashName string
	Quality        float64
	ReferencePrice decimal.Decimal
}

// PriceLookupName is the name used to query market prices for the item
func (i InventoryItem) PriceLookupName() string {
	if i.MarketHashName != "" {
		return i.MarketHashName
	}
	return i.Name
}
