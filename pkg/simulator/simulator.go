package simulator

import (
	"math"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/strategy"
)

// Simulator replays one ticker through a strategy and executes its trades.
//
// It is either FLAT (no shares) or LONG (a positive number of shares). On a
// LONG day it checks, in order, the strategy's sell signal, the take-profit
// and the stop-loss; if the position is FLAT afterwards it checks the buy
// signal. Cash never goes negative.
type Simulator[T strategy.State] struct {
	settings
	strategy strategy.Strategy[T]

	initialCash  float64
	cash         float64
	position     int
	lastBuyPrice float64
}

// New creates a simulator holding cash and no shares
func New[T strategy.State](cash float64, strat strategy.Strategy[T], options ...Option) *Simulator[T] {
	s := &Simulator[T]{
		settings:    defaultSettings(),
		strategy:    strat,
		initialCash: cash,
		cash:        cash,
	}
	for _, option := range options {
		option(&s.settings)
	}
	return s
}

// Cash returns the current cash balance
func (s *Simulator[T]) Cash() float64 { return s.cash }

// InitialCash returns the cash the simulator started with
func (s *Simulator[T]) InitialCash() float64 { return s.initialCash }

// Position returns the number of shares held
func (s *Simulator[T]) Position() int { return s.position }

// IsLong reports whether shares are held
func (s *Simulator[T]) IsLong() bool { return s.position > 0 }

// LastBuyPrice returns the price of the last buy, meaningful only while long
func (s *Simulator[T]) LastBuyPrice() float64 { return s.lastBuyPrice }

// Equity marks the open position to the given price
func (s *Simulator[T]) Equity(price float64) float64 {
	return s.cash + float64(s.position)*price
}

// NextToday processes a bar without a previous bar
func (s *Simulator[T]) NextToday(today core.PriceBar) DayResult[T] {
	return s.Next(today, nil)
}

// Next processes one bar. Indicators are always advanced; trading only
// happens on bars dated on or after the start date.
func (s *Simulator[T]) Next(today core.PriceBar, yesterday *core.PriceBar) DayResult[T] {
	state := s.strategy.Calculation(today, yesterday)
	result := DayResult[T]{Date: today.Date, State: state}

	if today.Date.Before(s.startDate) {
		return result
	}

	if s.position > 0 {
		if price, ok := s.strategy.SellSignal(today, state); ok {
			result.Events = append(result.Events, s.sell(Sell, price, today))
		}
		if s.exitCheckEnabled() {
			if price, ok := s.takeProfit.ShouldTrigger(today, s.lastBuyPrice); ok {
				result.Events = append(result.Events, s.sell(TakeProfit, price, today))
			}
		}
		if s.exitCheckEnabled() {
			if price, ok := s.stopLoss.ShouldTrigger(today, s.lastBuyPrice); ok {
				result.Events = append(result.Events, s.sell(StopLoss, price, today))
			}
		}
	}

	if s.position == 0 {
		if price, ok := s.strategy.BuySignal(today, state); ok {
			if event, executed := s.buy(price, today); executed {
				result.Events = append(result.Events, event)
			}
		}
	}

	return result
}

// Run feeds all bars in order and collects the daily results
func (s *Simulator[T]) Run(bars []core.PriceBar) []DayResult[T] {
	results := make([]DayResult[T], 0, len(bars))
	for i := range bars {
		var yesterday *core.PriceBar
		if i > 0 {
			yesterday = &bars[i-1]
		}
		results = append(results, s.Next(bars[i], yesterday))
	}
	return results
}

// Step implements Engine
func (s *Simulator[T]) Step(today core.PriceBar, yesterday *core.PriceBar) Day {
	return s.Next(today, yesterday).Day()
}

func (s *Simulator[T]) exitCheckEnabled() bool {
	return s.repeatedExits || s.position > 0
}

func (s *Simulator[T]) sell(kind Kind, price float64, today core.PriceBar) TradeEvent {
	shares := s.position
	s.cash += price*float64(shares) - s.fee.SellFee(shares, price)
	s.position = 0

	s.log.Debugf("%s %s: %s %d shares at %.4f, cash %.2f",
		today.Date.Format(core.DateLayout), today.Ticker, kind, shares, price, s.cash)

	return TradeEvent{Kind: kind, Trade: Trade{Price: price, Cash: s.cash, Shares: shares}}
}

// buy spends as much cash as possible at price, fee included. The share count
// starts at floor(cash/price) and is decremented until the order is
// affordable, so threshold fee schedules are handled as well.
func (s *Simulator[T]) buy(price float64, today core.PriceBar) (TradeEvent, bool) {
	if !(price > 0) || math.IsInf(price, 1) {
		s.log.Warnf("%s %s: ignoring buy at invalid price %v",
			today.Date.Format(core.DateLayout), today.Ticker, price)
		return TradeEvent{}, false
	}

	volume := int(math.Floor(s.cash / price))
	cost := s.cost(volume, price)
	for volume > 0 && s.cash < cost {
		volume--
		cost = s.cost(volume, price)
	}

	if volume == 0 && !s.repeatedExits {
		return TradeEvent{}, false
	}

	if volume > 0 {
		s.cash -= cost
	}
	s.position = volume
	s.lastBuyPrice = price

	s.log.Debugf("%s %s: buy %d shares at %.4f, cash %.2f",
		today.Date.Format(core.DateLayout), today.Ticker, volume, price, s.cash)

	return TradeEvent{Kind: Buy, Trade: Trade{Price: price, Cash: s.cash, Shares: volume}}, true
}

func (s *Simulator[T]) cost(volume int, price float64) float64 {
	return float64(volume)*price + s.fee.BuyFee(volume, price)
}
