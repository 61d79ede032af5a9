package shared_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

func TestToCents_Truncates(t *testing.T) {
	assert.Equal(t, int64(999), shared.ToCents(decimal.RequireFromString("9.99")))
	assert.Equal(t, int64(1000), shared.ToCents(decimal.RequireFromString("10")))
	assert.Equal(t, int64(12), shared.ToCents(decimal.RequireFromString("0.129")))
	assert.Equal(t, int64(0), shared.ToCents(decimal.Zero))
}

func TestFromCents(t *testing.T) {
	assert.True(t, shared.FromCents(1234).Equal(decimal.RequireFromString("12.34")))
	assert.Equal(t, "0.01", shared.MinimalUnit.StringFixed(2))
}

func TestRepeatedArithmeticDoesNotDrift(t *testing.T) {
	total := decimal.Zero
	for i := 0; i < 1000; i++ {
		total = total.Add(decimal.RequireFromString("0.10"))
	}
	assert.True(t, total.Equal(decimal.NewFromInt(100)))
}

func TestMaxAmount(t *testing.T) {
	a := decimal.RequireFromString("1.10")
	b := decimal.RequireFromString("1.09")
	assert.True(t, shared.MaxAmount(a, b).Equal(a))
	assert.True(t, shared.MaxAmount(b, a).Equal(a))
}
