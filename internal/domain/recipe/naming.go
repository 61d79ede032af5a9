package recipe

// statTrakPrefix is prepended to market hash names of StatTrak items
const statTrakPrefix = "StatTrak™ "

// MarketHashName composes the fully-qualified marketplace name of an item.
// Both price probing and order placement go through this function so the same string reaches both.
func MarketHashName(premium bool, baseName string, wear WearBucket) string {
	name := baseName + " (" + wear.String() + ")"
	if premium {
		return statTrakPrefix + name
	}
	return name
}
