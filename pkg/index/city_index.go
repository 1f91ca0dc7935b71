package index

import (
	"context"
	"iter"
	"slices"

	"github.com/matst80/zipfinder/pkg/postal"
)

// CityIndex groups postal records by normalized city name. Buckets keep the
// order the records were given to Build. A CityIndex is never modified after
// Build returns, so it can be shared between goroutines without locking.
type CityIndex struct {
	buckets map[string][]postal.Record
	keys    []string
	records int
}

// Build creates the index from records in input order.
func Build(records []postal.Record) *CityIndex {
	idx := &CityIndex{
		buckets: make(map[string][]postal.Record),
		keys:    make([]string, 0),
		records: len(records),
	}
	for _, rec := range records {
		key := Normalize(rec.City)
		bucket, ok := idx.buckets[key]
		if !ok {
			idx.keys = append(idx.keys, key)
		}
		idx.buckets[key] = append(bucket, rec)
	}
	return idx
}

// Bucket returns the records stored under an already normalized key. The
// returned slice is clipped so appending to it never touches the index.
func (idx *CityIndex) Bucket(_ context.Context, key string) ([]postal.Record, bool, error) {
	bucket, ok := idx.buckets[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clip(bucket), true, nil
}

// Len is the number of indexed records.
func (idx *CityIndex) Len() int {
	return idx.records
}

// Cities is the number of buckets.
func (idx *CityIndex) Cities() int {
	return len(idx.keys)
}

// Keys returns the bucket keys in the order they were first seen.
func (idx *CityIndex) Keys() []string {
	return slices.Clone(idx.keys)
}

// Buckets iterates over all buckets in first-seen key order.
func (idx *CityIndex) Buckets() iter.Seq2[string, []postal.Record] {
	return func(yield func(string, []postal.Record) bool) {
		for _, key := range idx.keys {
			if !yield(key, slices.Clip(idx.buckets[key])) {
				return
			}
		}
	}
}
