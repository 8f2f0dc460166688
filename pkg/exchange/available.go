package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/StudioSol/set"
	"github.com/samber/lo"
)

var ErrMissingAvailability = errors.New("availability list not found")

// AvailabilityPath returns the location of the broker availability list
func AvailabilityPath(root, broker string) string {
	return filepath.Join(root, "brokage_house_available_stocks", broker+".csv")
}

// LoadAvailable reads the tickers a broker allows trading. The list is a
// headerless CSV whose first column holds the ticker; duplicates are dropped
// keeping the first occurrence.
func LoadAvailable(path string) ([]string, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingAvailability, path)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseAvailable(file)
}

// ParseAvailable reads an availability list from r
func ParseAvailable(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	tickers := set.NewLinkedHashSetString()
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if ticker := strings.TrimSpace(line[0]); ticker != "" {
			tickers.Add(ticker)
		}
	}

	available := make([]string, 0, len(lines))
	for ticker := range tickers.Iter() {
		available = append(available, ticker)
	}
	return available, nil
}

// TickerFile returns the file name holding a ticker's quotes
func TickerFile(ticker string) string {
	return strings.ToLower(ticker) + ".txt"
}

// TickerFiles lists the quote files in dir that belong to an available ticker,
// sorted by name. Tickers without a file are skipped.
func TickerFiles(dir string, available []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	wanted := lo.SliceToMap(available, func(ticker string) (string, struct{}) {
		return TickerFile(ticker), struct{}{}
	})

	files := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		if !entry.Type().IsRegular() {
			return "", false
		}
		if _, ok := wanted[entry.Name()]; !ok {
			return "", false
		}
		return filepath.Join(dir, entry.Name()), true
	})
	sort.Strings(files)
	return files, nil
}

// TickerFromFile recovers the ticker symbol from a quote file path
func TickerFromFile(path string) string {
	return strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}
