package zerolog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/raykavin/backsim/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", JSON: true, Out: &buf})
	require.NoError(t, err)

	log.WithField("ticker", "ABC").WithError(errors.New("boom")).Infof("loaded %d bars", 3)

	out := buf.String()
	assert.Contains(t, out, `"ticker":"ABC"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, "loaded 3 bars")
	assert.Equal(t, logger.DebugLevel, log.GetLevel())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestLevelConversion(t *testing.T) {
	for _, level := range []logger.Level{logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel} {
		assert.Equal(t, level, toLevel(toZerologLevel(level)))
	}
}
