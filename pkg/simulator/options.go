package simulator

import (
	"time"

	"github.com/raykavin/backsim/pkg/logger"
	"github.com/raykavin/backsim/pkg/order"
)

type settings struct {
	startDate     time.Time
	stopLoss      order.StopLoss
	takeProfit    order.TakeProfit
	fee           order.BrokerFee
	log           logger.Logger
	repeatedExits bool
}

func defaultSettings() settings {
	return settings{
		stopLoss:   order.NoStopLoss{},
		takeProfit: order.NoTakeProfit{},
		fee:        order.NoFee{},
		log:        logger.Nop(),
	}
}

// Option configures a Simulator
type Option func(*settings)

// WithStartDate makes the simulator ignore signals on bars dated before start.
// Indicators still warm up on those bars.
func WithStartDate(start time.Time) Option {
	return func(s *settings) {
		s.startDate = start
	}
}

// WithStopLoss sets the stop-loss trigger
func WithStopLoss(stopLoss order.StopLoss) Option {
	return func(s *settings) {
		if stopLoss != nil {
			s.stopLoss = stopLoss
		}
	}
}

// WithTakeProfit sets the take-profit trigger
func WithTakeProfit(takeProfit order.TakeProfit) Option {
	return func(s *settings) {
		if takeProfit != nil {
			s.takeProfit = takeProfit
		}
	}
}

// WithBrokerFee sets the commission model
func WithBrokerFee(fee order.BrokerFee) Option {
	return func(s *settings) {
		if fee != nil {
			s.fee = fee
		}
	}
}

// WithLogger sets the logger used for trade tracing
func WithLogger(log logger.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRepeatedExits runs every exit check of a day even after an earlier one
// has closed the position, and records zero-share buys. Each of those extra
// operations shows up as an event without effect on cash.
func WithRepeatedExits(enabled bool) Option {
	return func(s *settings) {
		s.repeatedExits = enabled
	}
}
