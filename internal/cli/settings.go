package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raykavin/backsim/pkg/optimizer"
)

const dateLayout = "2006-01-02"

// Settings represents the main configuration for the application
type Settings struct {
	DataDir       string             `yaml:"data_dir"`       // Directory holding <ticker>.txt quote files
	Root          string             `yaml:"root"`           // Directory holding brokage_house_available_stocks/
	Broker        string             `yaml:"broker"`         // Availability list name, empty uses every quote file
	InitialCash   float64            `yaml:"initial_cash"`   // Cash per ticker
	StartDate     string             `yaml:"start_date"`     // First trading date, e.g. 2021-01-04
	Window        string             `yaml:"window"`         // Trailing window of bars, e.g. 730d
	Parallelism   int                `yaml:"parallelism"`    // Tickers simulated at once
	Fee           FeeSettings        `yaml:"fee"`            // Broker commission
	StopLoss      float64            `yaml:"stop_loss"`      // Fraction below the buy price, 0 disables
	TakeProfit    float64            `yaml:"take_profit"`    // Multiplier of the buy price, 0 disables
	RepeatedExits bool               `yaml:"repeated_exits"` // Run every exit check even once flat
	Strategy      StrategySettings   `yaml:"strategy"`       // Strategy and its parameters
	Grid          GridSettings       `yaml:"grid"`           // Grid search axes
	MonteCarlo    MonteCarloSettings `yaml:"monte_carlo"`    // Resampling settings
	Log           LogSettings        `yaml:"log"`            // Logger settings
}

// FeeSettings holds the broker commission schedule
type FeeSettings struct {
	Percent float64 `yaml:"percent"` // Fraction of the notional value
	Minimum float64 `yaml:"minimum"` // Floor per non-empty trade
}

// StrategySettings selects a strategy by name
type StrategySettings struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

// GridSettings holds the axes searched by the grid command
type GridSettings struct {
	Axes       []AxisSettings `yaml:"axes"`
	Indexed    bool           `yaml:"indexed"`   // Sample axes by index instead of accumulation
	FailFast   bool           `yaml:"fail_fast"` // Abort on the first failing point
	Output     string         `yaml:"output"`    // CSV file, empty prints only
	TopN       int            `yaml:"top_n"`
	Iterations int            `yaml:"iterations"` // Draws of the random command
	Seed       int64          `yaml:"seed"`       // Seed of the random command, zero is time based
}

// AxisSettings is one grid axis; Name is a strategy parameter
type AxisSettings struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// MonteCarloSettings holds the resampling settings
type MonteCarloSettings struct {
	Draws  int    `yaml:"draws"`  // Number of simulations
	Pick   int    `yaml:"pick"`   // Tickers per simulation
	Seed   int64  `yaml:"seed"`   // Zero uses the global source
	Output string `yaml:"output"` // CSV file, empty prints only
}

// LogSettings configures the logger
type LogSettings struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultSettings returns the settings used when no file is given
func DefaultSettings() Settings {
	return Settings{
		DataDir:     "data",
		Root:        ".",
		InitialCash: 10000,
		Parallelism: 4,
		Strategy:    StrategySettings{Name: "keltner", Params: map[string]float64{}},
		Grid:        GridSettings{TopN: 10, Iterations: 50},
		MonteCarlo:  MonteCarloSettings{Draws: 1000, Pick: 5},
		Log:         LogSettings{Level: "info"},
	}
}

// LoadSettings reads a YAML file over the defaults
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if settings.Strategy.Params == nil {
		settings.Strategy.Params = map[string]float64{}
	}
	return settings, settings.Validate()
}

// Validate checks the settings for values no command can run with
func (s Settings) Validate() error {
	if s.InitialCash <= 0 {
		return fmt.Errorf("initial_cash must be positive, got %v", s.InitialCash)
	}
	if s.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", s.Parallelism)
	}
	if s.StopLoss < 0 || s.StopLoss >= 1 {
		return fmt.Errorf("stop_loss must be in [0, 1), got %v", s.StopLoss)
	}
	if s.TakeProfit < 0 {
		return fmt.Errorf("take_profit cannot be negative, got %v", s.TakeProfit)
	}
	if _, err := s.Start(); err != nil {
		return err
	}
	if _, ok := strategies[s.Strategy.Name]; !ok {
		return fmt.Errorf("unknown strategy %q, available: %v", s.Strategy.Name, StrategyNames())
	}
	return nil
}

// Start parses the start date, the zero time when unset
func (s Settings) Start() (time.Time, error) {
	if s.StartDate == "" {
		return time.Time{}, nil
	}
	start, err := time.Parse(dateLayout, s.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date format: %w", err)
	}
	return start, nil
}

// Parameters converts the grid axes
func (g GridSettings) Parameters() []optimizer.Parameter {
	params := make([]optimizer.Parameter, 0, len(g.Axes))
	for _, axis := range g.Axes {
		params = append(params, optimizer.Parameter{
			Name: axis.Name,
			Min:  axis.Min,
			Max:  axis.Max,
			Step: axis.Step,
		})
	}
	return params
}
