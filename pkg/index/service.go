package index

import (
	"context"
	"fmt"

	"github.com/matst80/zipfinder/pkg/postal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noLookups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipfinder_lookups_total",
		Help: "The total number of city lookups",
	})
	noMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipfinder_lookup_misses_total",
		Help: "The total number of city lookups without a match",
	})
	noStoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipfinder_lookup_errors_total",
		Help: "The total number of city lookups that failed in the backing store",
	})
	indexedRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zipfinder_indexed_records",
		Help: "Number of postal records in the loaded index",
	})
	indexedCities = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zipfinder_indexed_cities",
		Help: "Number of distinct city keys in the loaded index",
	})
)

// ObserveIndex exports the size of idx as metrics.
func ObserveIndex(idx *CityIndex) {
	indexedRecords.Set(float64(idx.Len()))
	indexedCities.Set(float64(idx.Cities()))
}

// Service answers city name queries against a Store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Lookup returns every record whose city matches cityName ignoring case, in
// dataset order. A miss is reported as ErrNotFound. Callers must not modify
// the returned records.
func (s *Service) Lookup(ctx context.Context, cityName string) ([]postal.Record, error) {
	noLookups.Inc()
	records, ok, err := s.store.Bucket(ctx, Normalize(cityName))
	if err != nil {
		noStoreErrors.Inc()
		return nil, fmt.Errorf("lookup %q: %w", cityName, err)
	}
	if !ok {
		noMisses.Inc()
		return nil, ErrNotFound
	}
	return records, nil
}
