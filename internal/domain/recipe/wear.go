package recipe

// WearBucket is the discrete exterior classification derived from an item's float value.
// Buckets are ordered from least to most worn.
type WearBucket int

const (
	FactoryNew WearBucket = iota
	MinimalWear
	FieldTested
	WellWorn
	BattleScarred
)

// Upper bounds (exclusive) of each bucket. Battle-Scarred is closed at the top.
const (
	factoryNewUpper  = 0.07
	minimalWearUpper = 0.15
	fieldTestedUpper = 0.38
	wellWornUpper    = 0.45
)

// Classify maps a float value to its wear bucket using half-open intervals [lo, hi).
// Values below zero land in Factory New; values above one and NaN land in Battle-Scarred.
func Classify(quality float64) WearBucket {
	switch {
	case quality < factoryNewUpper:
		return FactoryNew
	case quality < minimalWearUpper:
		return MinimalWear
	case quality < fieldTestedUpper:
		return FieldTested
	case quality < wellWornUpper:
		return WellWorn
	default:
		return BattleScarred
	}
}

// String returns the marketplace display text, e.g. "Field-Tested"
func (w WearBucket) String() string {
	switch w {
	case FactoryNew:
		return "Factory New"
	case MinimalWear:
		return "Minimal Wear"
	case FieldTested:
		return "Field-Tested"
	case WellWorn:
		return "Well-Worn"
	case BattleScarred:
		return "Battle-Scarred"
	default:
		return "Unknown"
	}
}

// ConditionCode returns the short code TradeUpSpy uses in search filters
func (w WearBucket) ConditionCode() string {
	switch w {
	case FactoryNew:
		return "fn"
	case MinimalWear:
		return "mw"
	case FieldTested:
		return "ft"
	case WellWorn:
		return "ww"
	default:
		return "bs"
	}
}
