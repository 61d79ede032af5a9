package market

import "fmt"

// PlacementStatus tags the result of a buy order placement
type PlacementStatus int

const (
	PlacementAccepted PlacementStatus = iota
	PlacementRejected
	PlacementTransportFailure
)

func (s PlacementStatus) String() string {
	switch s {
	case PlacementAccepted:
		return "accepted"
	case PlacementRejected:
		return "rejected"
	default:
		return "transport_failure"
	}
}

// PlacementOutcome is the tagged result a marketplace adapter returns for a buy order.
// Adapters map raw response shapes onto it; decision logic never inspects raw responses.
type PlacementOutcome struct {
	status  PlacementStatus
	orderID string
	reason  string
	cause   error
}

// Accepted reports a placed order with its marketplace-assigned identifier
func Accepted(orderID string) PlacementOutcome {
	return PlacementOutcome{status: PlacementAccepted, orderID: orderID}
}

// Rejected reports an explicit refusal by the marketplace
func Rejected(reason string) PlacementOutcome {
	return PlacementOutcome{status: PlacementRejected, reason: reason}
}

// TransportFailure reports a network failure or an unrecognized response
func TransportFailure(cause error) PlacementOutcome {
	return PlacementOutcome{status: PlacementTransportFailure, cause: cause}
}

func (o PlacementOutcome) Status() PlacementStatus {
	return o.status
}

// OrderID is only meaningful for accepted outcomes
func (o PlacementOutcome) OrderID() string {
	return o.orderID
}

// IsAccepted reports whether an order now exists on the marketplace
func (o PlacementOutcome) IsAccepted() bool {
	return o.status == PlacementAccepted && o.orderID != ""
}

// Err converts a non-accepted outcome into a typed error; accepted outcomes return nil
func (o PlacementOutcome) Err() error {
	switch {
	case o.IsAccepted():
		return nil
	case o.status == PlacementRejected:
		return fmt.Errorf("%w: %s", ErrMarketplaceRejected, o.reason)
	case o.status == PlacementAccepted:
		return fmt.Errorf("%w: accepted response without order id", ErrMarketplaceTransport)
	case o.cause != nil:
		return fmt.Errorf("%w: %v", ErrMarketplaceTransport, o.cause)
	default:
		return ErrMarketplaceTransport
	}
}
