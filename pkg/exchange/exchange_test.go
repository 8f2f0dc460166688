package exchange

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/backsim/pkg/core"
)

const quotes = `<TICKER>,<PER>,<DATE>,<TIME>,<OPEN>,<HIGH>,<LOW>,<CLOSE>,<VOL>,<OPENINT>
CDR,D,20200102,000000,100.5,102,99.5,101,12345,0
CDR,D,20200103,000000,101,103.25,100,102.5,23456,0
CDR,D,20200106,000000,102.5,104,101,103,34567,0
`

func TestParseBars(t *testing.T) {
	bars, err := ParseBars(strings.NewReader(quotes))
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, core.PriceBar{
		Ticker: "CDR",
		Period: "D",
		Date:   core.Date(2020, time.January, 2),
		Time:   "000000",
		Open:   100.5,
		High:   102,
		Low:    99.5,
		Close:  101,
		Volume: 12345,
	}, bars[0])
	assert.Equal(t, core.Date(2020, time.January, 6), bars[2].Date)
	assert.Equal(t, 103.25, bars[1].High)
}

func TestParseBars_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{
			name:  "bad header",
			input: "ticker,date\nCDR,20200102\n",
			line:  "line 1",
		},
		{
			name: "bad number",
			input: strings.Join(Header, ",") + "\n" +
				"CDR,D,20200102,000000,100,abc,99,101,1,0\n",
			line: "line 2",
		},
		{
			name: "bad date",
			input: strings.Join(Header, ",") + "\n" +
				"CDR,D,20200102,000000,100,102,99,101,1,0\n" +
				"CDR,D,2020-01-03,000000,100,102,99,101,1,0\n",
			line: "line 3",
		},
		{
			name: "missing field",
			input: strings.Join(Header, ",") + "\n" +
				"CDR,D,20200102,000000,100,102,99,101,1\n",
			line: "line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars, err := ParseBars(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrMalformedRecord)
			assert.Contains(t, err.Error(), tt.line)
			assert.Nil(t, bars)
		})
	}
}

func TestParseBars_Invariants(t *testing.T) {
	header := strings.Join(Header, ",") + "\n"

	_, err := ParseBars(strings.NewReader(header +
		"CDR,D,20200102,000000,100,98,99,101,1,0\n"))
	assert.ErrorIs(t, err, core.ErrInvalidBar)

	_, err = ParseBars(strings.NewReader(header +
		"CDR,D,20200103,000000,100,102,99,101,1,0\n" +
		"CDR,D,20200102,000000,100,102,99,101,1,0\n"))
	assert.ErrorIs(t, err, core.ErrUnorderedBars)
}

func TestReadBars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cdr.txt")
	require.NoError(t, os.WriteFile(path, []byte(quotes), 0o600))

	bars, err := ReadBars(path)
	require.NoError(t, err)
	assert.Len(t, bars, 3)

	_, err = ReadBars(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLimit(t *testing.T) {
	bars, err := ParseBars(strings.NewReader(quotes))
	require.NoError(t, err)

	limited, err := Limit(bars, "3d")
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, core.Date(2020, time.January, 3), limited[0].Date)

	all, err := Limit(bars, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = Limit(bars, "two years")
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestLoadAvailable(t *testing.T) {
	root := t.TempDir()
	path := AvailabilityPath(root, "mbank")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("CDR,CD PROJEKT\nPKN,ORLEN\nCDR,duplicate\n\nKGH\n"), 0o600))

	available, err := LoadAvailable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CDR", "PKN", "KGH"}, available)

	_, err = LoadAvailable(AvailabilityPath(root, "unknown"))
	assert.ErrorIs(t, err, ErrMissingAvailability)
}

func TestTickerFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cdr.txt", "pkn.txt", "kgh.txt", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(quotes), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lpp.txt"), 0o755))

	files, err := TickerFiles(dir, []string{"PKN", "CDR", "LPP", "XTB"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "cdr.txt"),
		filepath.Join(dir, "pkn.txt"),
	}, files)

	assert.Equal(t, "CDR", TickerFromFile(files[0]))
	assert.Equal(t, "cdr.txt", TickerFile("CDR"))
}
