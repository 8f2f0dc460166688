package storage

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "keltner|20,2.5", Key("keltner", []float64{20, 2.5}))
	assert.Equal(t, "keltner|", Key("keltner", nil))
	assert.NotEqual(t, Key("a", []float64{1, 23}), Key("a", []float64{12, 3}))
}

func TestBuntStorage(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Load("rsi", []float64{14})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(Record{Namespace: "rsi", Values: []float64{14}, Score: 1.2, UpdatedAt: now}))
	require.NoError(t, store.Save(Record{Namespace: "rsi", Values: []float64{7}, Score: 0.9, UpdatedAt: now}))
	require.NoError(t, store.Save(Record{Namespace: "rsi", Values: []float64{21}, Score: 1.05, UpdatedAt: now}))
	require.NoError(t, store.Save(Record{Namespace: "macd", Values: []float64{14}, Score: 0.5, UpdatedAt: now}))

	record, ok, err := store.Load("rsi", []float64{14})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.2, record.Score)
	assert.Equal(t, []float64{14}, record.Values)
	assert.True(t, now.Equal(record.UpdatedAt))

	// saving the same point replaces its score
	require.NoError(t, store.Save(Record{Namespace: "rsi", Values: []float64{14}, Score: 1.3, UpdatedAt: now}))
	record, _, err = store.Load("rsi", []float64{14})
	require.NoError(t, err)
	assert.Equal(t, 1.3, record.Score)

	records, err := store.Records("rsi")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []float64{7}, records[0].Values)
	assert.Equal(t, []float64{21}, records[1].Values)
	assert.Equal(t, []float64{14}, records[2].Values)

	profitable, err := store.Records("rsi", func(record Record) bool { return record.Score > 1 })
	require.NoError(t, err)
	assert.Len(t, profitable, 2)

	err = store.Save(Record{Namespace: "rsi", Values: []float64{3}, Score: math.NaN()})
	assert.ErrorIs(t, err, ErrNonFiniteScore)
}

func TestCache(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	cache := NewCache(store, "ema_crossover")
	_, ok, err := cache.Lookup([]float64{12, 26})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store([]float64{12, 26}, 1.07))

	score, ok, err := cache.Lookup([]float64{12, 26})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.07, score)

	_, ok, err = NewCache(store, "other").Lookup([]float64{12, 26})
	require.NoError(t, err)
	assert.False(t, ok)
}
