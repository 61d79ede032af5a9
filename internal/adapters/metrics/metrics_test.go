package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
)

type placeCommand struct{}

func resetGlobals(t *testing.T) {
	t.Cleanup(func() {
		Registry = nil
		SetGlobalBotCollector(nil)
		SetGlobalAPICollector(nil)
	})
}

func TestRecordFunctionsAreNoopsWithoutSetup(t *testing.T) {
	resetGlobals(t)

	assert.False(t, IsEnabled())
	assert.NotPanics(t, func() {
		RecordBuyOrder("placed")
		SetActiveOrders(3)
		RecordAPIRequest("steam", "createbuyorder", 200, 0.1)
	})
}

func TestSetup_InstallsGlobalCollectors(t *testing.T) {
	resetGlobals(t)

	commands, err := Setup()
	require.NoError(t, err)
	require.NotNil(t, commands)

	RecordBuyOrder("placed")
	RecordBuyOrder("placed")
	RecordBuyOrder("rejected")
	SetActiveOrders(2)
	RecordListing("listed")

	bot := globalBotCollector.(*BotMetricsCollector)
	assert.Equal(t, 2.0, testutil.ToFloat64(bot.buyOrders.WithLabelValues("placed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(bot.buyOrders.WithLabelValues("rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(bot.activeOrders))
	assert.Equal(t, 1.0, testutil.ToFloat64(bot.listings.WithLabelValues("listed")))

	families, err := Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "tradeup_bot_buy_orders_total")
	assert.Contains(t, names, "go_goroutines")
}

func TestSetup_TwiceStartsFromFreshRegistry(t *testing.T) {
	resetGlobals(t)

	_, err := Setup()
	require.NoError(t, err)
	_, err = Setup()
	assert.NoError(t, err)
}

func TestPrometheusMiddleware_LabelsByRequestName(t *testing.T) {
	resetGlobals(t)
	collector := NewCommandMetricsCollector()
	mw := PrometheusMiddleware(collector)

	ok := func(ctx context.Context, r common.Request) (common.Response, error) { return "done", nil }
	fail := func(ctx context.Context, r common.Request) (common.Response, error) { return nil, errors.New("boom") }

	resp, err := mw(context.Background(), &placeCommand{}, ok)
	require.NoError(t, err)
	assert.Equal(t, "done", resp)
	_, err = mw(context.Background(), &placeCommand{}, fail)
	assert.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.handled.WithLabelValues("placeCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.handled.WithLabelValues("placeCommand", "error")))
}

func TestPrometheusMiddleware_InFlightReturnsToZero(t *testing.T) {
	collector := NewCommandMetricsCollector()
	mw := PrometheusMiddleware(collector)

	var during float64
	_, err := mw(context.Background(), &placeCommand{}, func(ctx context.Context, r common.Request) (common.Response, error) {
		during = testutil.ToFloat64(collector.inFlight.WithLabelValues("placeCommand"))
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.inFlight.WithLabelValues("placeCommand")))
}
