package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidWindow   = errors.New("invalid window")
)

// Header is the column layout of a daily quote file
var Header = []string{
	"<TICKER>", "<PER>", "<DATE>", "<TIME>", "<OPEN>",
	"<HIGH>", "<LOW>", "<CLOSE>", "<VOL>", "<OPENINT>",
}

// ReadBars loads every bar of a quote file
func ReadBars(path string) ([]core.PriceBar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	bars, err := ParseBars(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ParseBars reads bars from a quote file. The first row must be the header;
// any row that cannot be parsed rejects the whole input. Bars are returned in
// file order and must be strictly increasing by date.
func ParseBars(r io.Reader) ([]core.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	if err := parseHeader(lines[0]); err != nil {
		return nil, err
	}

	bars := make([]core.PriceBar, 0, len(lines)-1)
	for i, line := range lines[1:] {
		bar, err := parseBarFromLine(line)
		if err != nil {
			// line numbers are 1-based and count the header
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, i+2, err)
		}
		bars = append(bars, bar)
	}

	if err := core.ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func parseHeader(header []string) error {
	if len(header) != len(Header) {
		return fmt.Errorf("%w: line 1: expected %d columns, got %d", ErrMalformedRecord, len(Header), len(header))
	}
	for i, column := range header {
		if !strings.EqualFold(strings.TrimSpace(column), Header[i]) {
			return fmt.Errorf("%w: line 1: unexpected column %q, want %q", ErrMalformedRecord, column, Header[i])
		}
	}
	return nil
}

func parseBarFromLine(line []string) (core.PriceBar, error) {
	if len(line) != len(Header) {
		return core.PriceBar{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(line))
	}

	date, err := time.Parse(core.DateLayout, line[2])
	if err != nil {
		return core.PriceBar{}, fmt.Errorf("date: %w", err)
	}

	bar := core.PriceBar{
		Ticker: line[0],
		Period: line[1],
		Date:   date,
		Time:   line[3],
	}

	fields := []struct {
		name  string
		value *float64
		raw   string
	}{
		{"open", &bar.Open, line[4]},
		{"high", &bar.High, line[5]},
		{"low", &bar.Low, line[6]},
		{"close", &bar.Close, line[7]},
		{"volume", &bar.Volume, line[8]},
	}
	for _, field := range fields {
		if *field.value, err = strconv.ParseFloat(field.raw, 64); err != nil {
			return core.PriceBar{}, fmt.Errorf("%s: %w", field.name, err)
		}
	}

	if bar.OpenInterest, err = strconv.ParseInt(line[9], 10, 64); err != nil {
		return core.PriceBar{}, fmt.Errorf("open interest: %w", err)
	}

	return bar, nil
}

// Limit keeps the bars dated within window of the last bar, both ends
// included. Windows use str2duration units, "730d" keeps two years.
// An empty window keeps everything.
func Limit(bars []core.PriceBar, window string) ([]core.PriceBar, error) {
	if window == "" || len(bars) == 0 {
		return bars, nil
	}

	duration, err := str2duration.ParseDuration(window)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidWindow, window, err)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w %q: negative", ErrInvalidWindow, window)
	}

	start := bars[len(bars)-1].Date.Add(-duration)
	return lo.Filter(bars, func(bar core.PriceBar, _ int) bool {
		return !bar.Date.Before(start)
	}), nil
}
