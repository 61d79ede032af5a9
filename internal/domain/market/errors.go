package market

import "errors"

// Error taxonomy for marketplace interaction. Every collaborator failure is converted
// into a local decision at the point of use; none of these abort a poll cycle.
var (
	// ErrDataUnavailable is returned when a price probe or lookup could not be served
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrMarketplaceRejected is returned when the marketplace explicitly declined an order
	ErrMarketplaceRejected = errors.New("marketplace rejected order")

	// ErrMarketplaceTransport is returned for network/transport failures and unrecognized responses
	ErrMarketplaceTransport = errors.New("marketplace transport failure")

	// ErrLedgerClosed is returned when a placement is requested after shutdown started
	ErrLedgerClosed = errors.New("order ledger closed")

	// ErrInvalidOrder is returned when an order request fails basic validation
	ErrInvalidOrder = errors.New("invalid order")
)
