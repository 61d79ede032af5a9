package market_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
)

func TestPlacementOutcome_Accepted(t *testing.T) {
	outcome := market.Accepted("12345")

	assert.True(t, outcome.IsAccepted())
	assert.Equal(t, "12345", outcome.OrderID())
	assert.NoError(t, outcome.Err())
	assert.Equal(t, "accepted", outcome.Status().String())
}

func TestPlacementOutcome_AcceptedWithoutIDIsTransportFailure(t *testing.T) {
	outcome := market.Accepted("")

	assert.False(t, outcome.IsAccepted())
	assert.ErrorIs(t, outcome.Err(), market.ErrMarketplaceTransport)
}

func TestPlacementOutcome_Rejected(t *testing.T) {
	outcome := market.Rejected("insufficient wallet balance")

	assert.False(t, outcome.IsAccepted())
	assert.ErrorIs(t, outcome.Err(), market.ErrMarketplaceRejected)
	assert.Contains(t, outcome.Err().Error(), "insufficient wallet balance")
}

func TestPlacementOutcome_TransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	outcome := market.TransportFailure(cause)

	assert.Equal(t, market.PlacementTransportFailure, outcome.Status())
	assert.ErrorIs(t, outcome.Err(), market.ErrMarketplaceTransport)
	assert.Contains(t, outcome.Err().Error(), "connection refused")
}

func TestBuyIntent_Validate(t *testing.T) {
	valid := market.BuyIntent{Targets: []string{"x"}, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}
	assert.NoError(t, valid.Validate())

	noTargets := valid
	noTargets.Targets = nil
	assert.ErrorIs(t, noTargets.Validate(), market.ErrInvalidOrder)

	zeroQty := valid
	zeroQty.Quantity = 0
	assert.ErrorIs(t, zeroQty.Validate(), market.ErrInvalidOrder)

	negative := valid
	negative.UnitPrice = decimal.NewFromInt(-1)
	assert.ErrorIs(t, negative.Validate(), market.ErrInvalidOrder)
}

func TestNewActiveOrder_RequiresID(t *testing.T) {
	_, err := market.NewActiveOrder("", "x", 1, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, market.ErrInvalidOrder)

	order, err := market.NewActiveOrder("42", "x", 2, decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.Equal(t, "42: 2 x x @ 1.50", order.String())
}

func TestJournalStatus(t *testing.T) {
	status, err := market.ParseJournalStatus("CANCEL_FAILED")
	require.NoError(t, err)
	assert.True(t, status.IsOutstanding())
	assert.True(t, market.JournalOpen.IsOutstanding())
	assert.False(t, market.JournalCancelled.IsOutstanding())

	_, err = market.ParseJournalStatus("FILLED")
	assert.Error(t, err)
}
