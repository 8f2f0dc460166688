package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/order"
	"github.com/raykavin/backsim/pkg/strategy"
)

type closeState struct {
	close float64
}

func (s closeState) Values() []float64 { return []float64{s.close} }

// scripted buys at the close whenever buy is set and sells at the close
// whenever sell is set.
type scripted struct {
	buy, sell bool
	calls     int
}

func (s *scripted) Calculation(today core.PriceBar, _ *core.PriceBar) closeState {
	s.calls++
	return closeState{close: today.Close}
}

func (s *scripted) BuySignal(today core.PriceBar, _ closeState) (float64, bool) {
	return today.Close, s.buy
}

func (s *scripted) SellSignal(today core.PriceBar, _ closeState) (float64, bool) {
	return today.Close, s.sell
}

var _ strategy.Strategy[closeState] = (*scripted)(nil)

func day(n int, open, high, low, close float64) core.PriceBar {
	return core.PriceBar{
		Ticker: "TEST",
		Date:   core.Date(2020, time.January, n),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
	}
}

func flat(n int, price float64) core.PriceBar {
	return day(n, price, price, price, price)
}

func TestSimulator_StopLossEndToEnd(t *testing.T) {
	sim := New[closeState](10000, &scripted{buy: true},
		WithStopLoss(order.NewPercentageStopLoss(0.1)),
		WithBrokerFee(order.NoFee{}),
	)

	first := sim.NextToday(day(1, 100, 100, 100, 100))
	require.Len(t, first.Events, 1)
	assert.Equal(t, Buy, first.Events[0].Kind)
	assert.Equal(t, Trade{Price: 100, Cash: 0, Shares: 100}, first.Events[0].Trade)
	assert.Equal(t, 100, sim.Position())

	yesterday := day(1, 100, 100, 100, 100)
	second := sim.Next(day(2, 95, 95, 90, 92), &yesterday)
	require.NotEmpty(t, second.Events)
	assert.Equal(t, StopLoss, second.Events[0].Kind)
	assert.Equal(t, 90.0, second.Events[0].Trade.Price)
	assert.Equal(t, 9000.0, second.Events[0].Trade.Cash)
	assert.Equal(t, 100, second.Events[0].Trade.Shares)

	// the buy signal is still on, so the simulator re-enters on the same bar
	require.Len(t, second.Events, 2)
	assert.Equal(t, Buy, second.Events[1].Kind)
	assert.Equal(t, 92.0, second.Events[1].Trade.Price)
	assert.Equal(t, 97, second.Events[1].Trade.Shares)
}

// buyOnce raises the buy signal on its first bar only
type buyOnce struct {
	scripted
}

func (s *buyOnce) BuySignal(today core.PriceBar, _ closeState) (float64, bool) {
	return today.Close, s.calls == 1
}

func TestSimulator_StopLossThenFlat(t *testing.T) {
	sim := New[closeState](10000, &buyOnce{},
		WithStopLoss(order.NewPercentageStopLoss(0.1)),
		WithBrokerFee(order.NoFee{}),
	)

	results := sim.Run([]core.PriceBar{flat(1, 100), flat(2, 90), flat(3, 80)})
	require.Len(t, results, 3)

	require.Len(t, results[0].Events, 1)
	assert.Equal(t, Buy, results[0].Events[0].Kind)
	assert.Equal(t, Trade{Price: 100, Cash: 0, Shares: 100}, results[0].Events[0].Trade)

	require.Len(t, results[1].Events, 1)
	assert.Equal(t, StopLoss, results[1].Events[0].Kind)
	assert.Equal(t, Trade{Price: 90, Cash: 9000, Shares: 100}, results[1].Events[0].Trade)

	assert.Empty(t, results[2].Events)
	assert.Equal(t, 0, sim.Position())
	assert.Equal(t, 9000.0, sim.Cash())
}

func TestSimulator_StartDate(t *testing.T) {
	strat := &scripted{buy: true}
	sim := New[closeState](1000, strat, WithStartDate(core.Date(2020, time.January, 3)))

	results := sim.Run([]core.PriceBar{flat(1, 10), flat(2, 10), flat(3, 10)})
	require.Len(t, results, 3)
	assert.Empty(t, results[0].Events)
	assert.Empty(t, results[1].Events)
	require.Len(t, results[2].Events, 1)
	assert.Equal(t, Buy, results[2].Events[0].Kind)

	// indicators are advanced on every bar
	assert.Equal(t, 3, strat.calls)
	assert.Equal(t, 10.0, results[0].State.close)
}

func TestSimulator_SellSignal(t *testing.T) {
	strat := &scripted{buy: true}
	sim := New[closeState](1000, strat)

	sim.NextToday(flat(1, 10))
	require.Equal(t, 100, sim.Position())

	strat.buy, strat.sell = false, true
	result := sim.NextToday(flat(2, 12))
	require.Len(t, result.Events, 1)
	assert.Equal(t, Sell, result.Events[0].Kind)
	assert.Equal(t, 1200.0, sim.Cash())
	assert.Equal(t, 0, sim.Position())
	assert.False(t, sim.IsLong())
}

func TestSimulator_TakeProfitBeforeStopLoss(t *testing.T) {
	sim := New[closeState](1000, &scripted{buy: true},
		WithTakeProfit(order.NewPercentageTakeProfit(1.1)),
		WithStopLoss(order.NewPercentageStopLoss(0.1)),
	)
	sim.NextToday(flat(1, 10))

	// the bar both reaches the target and breaches the stop
	result := sim.NextToday(day(2, 10, 12, 8, 10))
	require.NotEmpty(t, result.Events)
	assert.Equal(t, TakeProfit, result.Events[0].Kind)
	assert.Equal(t, 12.0, result.Events[0].Trade.Price)
	for _, event := range result.Events[1:] {
		assert.NotEqual(t, StopLoss, event.Kind)
	}
}

func TestSimulator_RepeatedExits(t *testing.T) {
	strat := &scripted{buy: true}
	sim := New[closeState](1000, strat,
		WithTakeProfit(order.NewPercentageTakeProfit(1.1)),
		WithStopLoss(order.NewPercentageStopLoss(0.1)),
		WithRepeatedExits(true),
	)
	sim.NextToday(flat(1, 10))

	strat.buy, strat.sell = false, true
	result := sim.NextToday(day(2, 10, 12, 8, 10))
	require.Len(t, result.Events, 3)
	assert.Equal(t, Sell, result.Events[0].Kind)
	assert.Equal(t, 100, result.Events[0].Trade.Shares)
	assert.Equal(t, TakeProfit, result.Events[1].Kind)
	assert.Equal(t, 0, result.Events[1].Trade.Shares)
	assert.Equal(t, StopLoss, result.Events[2].Kind)
	assert.Equal(t, 0, result.Events[2].Trade.Shares)

	// only the first exit changes the balance
	assert.Equal(t, 1000.0, sim.Cash())
	assert.Equal(t, result.Events[0].Trade.Cash, result.Events[2].Trade.Cash)
}

func TestSimulator_ZeroShareBuy(t *testing.T) {
	t.Run("skipped by default", func(t *testing.T) {
		sim := New[closeState](5, &scripted{buy: true})
		result := sim.NextToday(flat(1, 10))
		assert.Empty(t, result.Events)
		assert.Equal(t, 5.0, sim.Cash())
	})

	t.Run("recorded with repeated exits", func(t *testing.T) {
		sim := New[closeState](5, &scripted{buy: true}, WithRepeatedExits(true))
		result := sim.NextToday(flat(1, 10))
		require.Len(t, result.Events, 1)
		assert.Equal(t, Trade{Price: 10, Cash: 5, Shares: 0}, result.Events[0].Trade)
		assert.False(t, sim.IsLong())
	})
}

func TestSimulator_InvalidBuyPrice(t *testing.T) {
	sim := New[closeState](1000, &scripted{buy: true})
	result := sim.NextToday(flat(1, 0))
	assert.Empty(t, result.Events)
	assert.Equal(t, 1000.0, sim.Cash())
}

func TestSimulator_FeeDecrementsVolume(t *testing.T) {
	sim := New[closeState](1000, &scripted{buy: true},
		WithBrokerFee(order.NewMinimumFee(0.001, 5)),
	)

	result := sim.NextToday(flat(1, 10))
	require.Len(t, result.Events, 1)

	// 100 shares cost 1000 + 5, 99 shares cost 990 + 5
	assert.Equal(t, 99, result.Events[0].Trade.Shares)
	assert.InDelta(t, 5.0, sim.Cash(), 1e-9)
	assert.GreaterOrEqual(t, sim.Cash(), 0.0)
}

func TestSimulator_NeverOverdraws(t *testing.T) {
	strat := &scripted{}
	sim := New[closeState](777, strat,
		WithBrokerFee(order.NewPercentageFee(0.01)),
	)

	prices := []float64{13, 17, 11, 23, 19, 7, 29, 31}
	for i, price := range prices {
		strat.buy = i%2 == 0
		strat.sell = i%2 == 1
		sim.NextToday(flat(i+1, price))
		assert.GreaterOrEqual(t, sim.Cash(), 0.0)
		assert.GreaterOrEqual(t, sim.Position(), 0)
	}
}

func TestSimulator_Engine(t *testing.T) {
	var engine Engine = New[closeState](100, &scripted{buy: true})

	today := flat(1, 10)
	d := engine.Step(today, nil)
	assert.Equal(t, today.Date, d.Date)
	assert.Equal(t, []float64{10}, d.Values)
	require.Len(t, d.Events, 1)
	assert.Equal(t, 10, engine.Position())
	assert.Equal(t, 120.0, engine.Equity(12))
	assert.Equal(t, 100.0, engine.InitialCash())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "buy", Buy.String())
	assert.Equal(t, "sell", Sell.String())
	assert.Equal(t, "stop_loss", StopLoss.String())
	assert.Equal(t, "take_profit", TakeProfit.String())
	assert.False(t, Buy.IsExit())
	assert.True(t, StopLoss.IsExit())
}
