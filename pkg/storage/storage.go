package storage

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/backsim/pkg/optimizer"
)

var ErrNonFiniteScore = errors.New("score must be finite")

// Record is the score of one grid point
type Record struct {
	Namespace string    `json:"namespace"`
	Values    []float64 `json:"values"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordFilter selects records returned by Records
type RecordFilter func(record Record) bool

// ScoreStorage keeps the scores of grid points for the length of a search.
// Points are identified by a namespace, which groups the scores of one
// setup, and their values.
type ScoreStorage interface {
	Save(record Record) error
	Load(namespace string, values []float64) (Record, bool, error)
	// Records returns the records of a namespace by ascending score
	Records(namespace string, filters ...RecordFilter) ([]Record, error)
	Close() error
}

// Key identifies a point within a storage
func Key(namespace string, values []float64) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.FormatFloat(value, 'g', -1, 64)
	}
	return namespace + "|" + strings.Join(parts, ",")
}

var (
	_ ScoreStorage    = (*BuntStorage)(nil)
	_ optimizer.Cache = (*Cache)(nil)
)

// Cache serves the scores of one namespace to the optimizer
type Cache struct {
	storage   ScoreStorage
	namespace string
}

// NewCache creates a cache over storage restricted to namespace
func NewCache(storage ScoreStorage, namespace string) *Cache {
	return &Cache{storage: storage, namespace: namespace}
}

// Lookup returns the stored score of values
func (c *Cache) Lookup(values []float64) (float64, bool, error) {
	record, ok, err := c.storage.Load(c.namespace, values)
	if err != nil || !ok {
		return 0, false, err
	}
	return record.Score, true, nil
}

// Store saves the score of values
func (c *Cache) Store(values []float64, score float64) error {
	return c.storage.Save(Record{
		Namespace: c.namespace,
		Values:    values,
		Score:     score,
		UpdatedAt: time.Now(),
	})
}
