package cli

import (
	"fmt"
	"math"
	"sort"

	"github.com/raykavin/backsim/pkg/backtest"
	"github.com/raykavin/backsim/pkg/indicator"
	"github.com/raykavin/backsim/pkg/order"
	"github.com/raykavin/backsim/pkg/simulator"
	"github.com/raykavin/backsim/pkg/strategy"
)

// params holds strategy parameters by name
type params map[string]float64

func (p params) length(name string) (int, error) {
	value := int(math.Round(p[name]))
	if value < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %v", name, p[name])
	}
	return value, nil
}

func (p params) lengths(names ...string) ([]int, error) {
	values := make([]int, 0, len(names))
	for _, name := range names {
		value, err := p.length(name)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

type builder func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error)

type strategyEntry struct {
	defaults params
	build    builder
}

var strategies = map[string]strategyEntry{
	"ema_slope": {
		defaults: params{"length": 20, "buy_angle": strategy.DefaultBuyAngle, "sell_angle": strategy.DefaultSellAngle},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			length, err := p.length("length")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewEMASlope(length, p["buy_angle"], p["sell_angle"])
			return backtest.NewEngine[strategy.EMASlopeState](config, strat, options...), nil
		},
	},
	"keltner": {
		defaults: params{"length": 20, "multiplier": 2},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			length, err := p.length("length")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewKeltner(length, p["multiplier"])
			return backtest.NewEngine[indicator.KeltnerResult](config, strat, options...), nil
		},
	},
	"macd_cross": {
		defaults: params{
			"fast":   indicator.DefaultMACDFast,
			"slow":   indicator.DefaultMACDSlow,
			"signal": indicator.DefaultMACDSignal,
		},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			l, err := p.lengths("fast", "slow", "signal")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewMACDCross(l[0], l[1], l[2])
			return backtest.NewEngine[indicator.MACDResult](config, strat, options...), nil
		},
	},
	"macd_divergence": {
		defaults: params{
			"fast":     indicator.DefaultMACDFast,
			"slow":     indicator.DefaultMACDSlow,
			"signal":   indicator.DefaultMACDSignal,
			"min_drop": strategy.DefaultDivergenceDrop,
		},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			l, err := p.lengths("fast", "slow", "signal")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewMACDDivergence(l[0], l[1], l[2], p["min_drop"])
			return backtest.NewEngine[strategy.MACDDivergenceState](config, strat, options...), nil
		},
	},
	"rsi": {
		defaults: params{"length": 14, "lower": 30, "upper": 70},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			length, err := p.length("length")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewRSIThreshold(length, p["lower"], p["upper"])
			return backtest.NewEngine[indicator.RSIResult](config, strat, options...), nil
		},
	},
	"ema_trend": {
		defaults: params{"length": 200, "buy_pct": 0.05, "sell_pct": 0.05},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			length, err := p.length("length")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewEMATrend(length, p["buy_pct"], p["sell_pct"])
			return backtest.NewEngine[strategy.EMATrendState](config, strat, options...), nil
		},
	},
	"ema_crossover": {
		defaults: params{"short": 12, "long": 26},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			l, err := p.lengths("short", "long")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewEMACrossover(l[0], l[1])
			return backtest.NewEngine[strategy.EMACrossoverState](config, strat, options...), nil
		},
	},
	"keltner+rsi": {
		defaults: params{"length": 20, "multiplier": 2, "rsi_length": 14, "lower": 30, "upper": 70},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			l, err := p.lengths("length", "rsi_length")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewChained[indicator.KeltnerResult, indicator.RSIResult](
				strategy.NewKeltner(l[0], p["multiplier"]),
				strategy.NewRSIThreshold(l[1], p["lower"], p["upper"]),
			)
			return backtest.NewEngine[strategy.Pair[indicator.KeltnerResult, indicator.RSIResult]](config, strat, options...), nil
		},
	},
	"macd_cross+ema_trend": {
		defaults: params{
			"fast":     indicator.DefaultMACDFast,
			"slow":     indicator.DefaultMACDSlow,
			"signal":   indicator.DefaultMACDSignal,
			"length":   200,
			"buy_pct":  0,
			"sell_pct": 0,
		},
		build: func(p params, config backtest.Config, options []simulator.Option) (simulator.Engine, error) {
			l, err := p.lengths("fast", "slow", "signal", "length")
			if err != nil {
				return nil, err
			}
			strat := strategy.NewChained[indicator.MACDResult, strategy.EMATrendState](
				strategy.NewMACDCross(l[0], l[1], l[2]),
				strategy.NewEMATrend(l[3], p["buy_pct"], p["sell_pct"]),
			)
			return backtest.NewEngine[strategy.Pair[indicator.MACDResult, strategy.EMATrendState]](config, strat, options...), nil
		},
	},
}

// StrategyNames lists the registered strategies
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StrategyDefaults returns a copy of the default parameters of a strategy
func StrategyDefaults(name string) (map[string]float64, error) {
	entry, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	defaults := make(map[string]float64, len(entry.defaults))
	for key, value := range entry.defaults {
		defaults[key] = value
	}
	return defaults, nil
}

// engineOptions turns the execution settings into simulator options
func (s Settings) engineOptions() []simulator.Option {
	options := []simulator.Option{simulator.WithRepeatedExits(s.RepeatedExits)}
	if s.StopLoss > 0 {
		options = append(options, simulator.WithStopLoss(order.NewPercentageStopLoss(s.StopLoss)))
	}
	if s.TakeProfit > 0 {
		options = append(options, simulator.WithTakeProfit(order.NewPercentageTakeProfit(s.TakeProfit)))
	}
	switch {
	case s.Fee.Minimum > 0:
		options = append(options, simulator.WithBrokerFee(order.NewMinimumFee(s.Fee.Percent, s.Fee.Minimum)))
	case s.Fee.Percent > 0:
		options = append(options, simulator.WithBrokerFee(order.NewPercentageFee(s.Fee.Percent)))
	}
	return options
}

// Factory builds engines for the configured strategy. overrides replace
// parameters by name, in the order given by names.
func (s Settings) Factory(names []string, overrides []float64) (backtest.Factory, error) {
	entry, ok := strategies[s.Strategy.Name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q, available: %v", s.Strategy.Name, StrategyNames())
	}

	p := make(params, len(entry.defaults))
	for key, value := range entry.defaults {
		p[key] = value
	}

	set := func(name string, value float64) error {
		if _, known := entry.defaults[name]; !known {
			return fmt.Errorf("strategy %s has no parameter %q", s.Strategy.Name, name)
		}
		p[name] = value
		return nil
	}
	for name, value := range s.Strategy.Params {
		if err := set(name, value); err != nil {
			return nil, err
		}
	}
	for i, name := range names {
		if err := set(name, overrides[i]); err != nil {
			return nil, err
		}
	}

	// fail before the first ticker on parameters no engine can be built with
	if _, err := entry.build(p, backtest.Config{}, nil); err != nil {
		return nil, err
	}

	options := s.engineOptions()
	return func(_ string, config backtest.Config) (simulator.Engine, error) {
		return entry.build(p, config, options)
	}, nil
}
