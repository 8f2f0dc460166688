package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/buntdb"
)

// BuntStorage implements ScoreStorage using BuntDB
type BuntStorage struct {
	db *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory() (*BuntStorage, error) {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex("score_index", "*", buntdb.IndexJSON("score"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &BuntStorage{
		db: db,
	}, nil
}

// Save stores a record, replacing any previous score of the same point
func (b *BuntStorage) Save(record Record) error {
	if math.IsNaN(record.Score) || math.IsInf(record.Score, 0) {
		return fmt.Errorf("%w: %v", ErrNonFiniteScore, record.Score)
	}

	content, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	return b.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(Key(record.Namespace, record.Values), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store record: %w", err)
		}
		return nil
	})
}

// Load returns the record of a point, if stored
func (b *BuntStorage) Load(namespace string, values []float64) (Record, bool, error) {
	var record Record
	err := b.db.View(func(tx *buntdb.Tx) error {
		content, err := tx.Get(Key(namespace, values))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(content), &record)
	})

	if errors.Is(err, buntdb.ErrNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to load record: %w", err)
	}
	return record, true, nil
}

// Records returns the records of a namespace by ascending score
func (b *BuntStorage) Records(namespace string, filters ...RecordFilter) ([]Record, error) {
	records := make([]Record, 0)
	var decodeErr error

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("score_index", func(_, value string) bool {
			var record Record
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				decodeErr = fmt.Errorf("failed to unmarshal record: %w", err)
				return false
			}
			if record.Namespace != namespace {
				return true
			}
			for _, filter := range filters {
				if !filter(record) {
					return true
				}
			}
			records = append(records, record)
			return true
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to iterate over records: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return records, nil
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
