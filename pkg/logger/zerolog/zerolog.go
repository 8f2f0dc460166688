package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Config describes the console logger built by New
type Config struct {
	Level          string    // zerolog level name, e.g. "info"
	DateTimeLayout string    // timestamp layout for the console writer
	Colored        bool      // ANSI colours in console mode
	JSON           bool      // plain zerolog JSON lines instead of the console format
	Out            io.Writer // defaults to os.Stdout
}

// DefaultConfig is a coloured console logger at info level
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		DateTimeLayout: "2006-01-02 15:04:05",
		Colored:        true,
	}
}

// New builds a zerolog logger wrapped in an Adapter
func New(cfg Config) (*Adapter, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	var l zerolog.Logger
	if cfg.JSON {
		l = zerolog.New(out).Level(level).With().Timestamp().Logger()
		return NewAdapter(&l), nil
	}

	output := zerolog.ConsoleWriter{
		Out:             out,
		NoColor:         !cfg.Colored,
		TimeFormat:      cfg.DateTimeLayout,
		FormatLevel:     formatLevel,
		FormatMessage:   formatMessage,
		FormatCaller:    formatCaller,
		FormatTimestamp: func(i interface{}) string { return formatTimestamp(i, cfg.DateTimeLayout) },
	}

	l = zerolog.New(output).Level(level).With().Timestamp().CallerWithSkipFrameCount(3).Logger()
	return NewAdapter(&l), nil
}

func formatLevel(i interface{}) string {
	level, ok := i.(string)
	if !ok {
		return "UNKNOWN"
	}

	switch level {
	case zerolog.LevelTraceValue, zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	case zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return term.Redf("[FTL]")
	default:
		return term.Whitef("[UNK]")
	}
}

func formatMessage(i interface{}) string {
	const maxSize = 80

	msg, ok := i.(string)
	if !ok || len(msg) == 0 {
		return ">"
	}

	if len(msg) > maxSize {
		msg = msg[:maxSize]
	}
	return term.Whitef("> %-*s", maxSize, msg)
}

func formatCaller(i interface{}) string {
	const maxFileSize = 18

	fname, ok := i.(string)
	if !ok || len(fname) == 0 {
		return ""
	}

	base, line, found := strings.Cut(filepath.Base(fname), ":")
	if !found {
		return base
	}
	if len(base) > maxFileSize {
		base = base[:maxFileSize]
	}
	return term.Yellowf("[%-*s:%4s]", maxFileSize, base, line)
}

func formatTimestamp(i interface{}, layout string) string {
	raw, ok := i.(string)
	if !ok {
		return term.Cyanf("[%v]", i)
	}

	if ts, err := time.ParseInLocation(time.RFC3339, raw, time.Local); err == nil {
		raw = ts.In(time.Local).Format(layout)
	}
	return term.Cyanf("[%s]", raw)
}
