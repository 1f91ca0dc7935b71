package index

import (
	"context"
	"errors"

	"github.com/matst80/zipfinder/pkg/postal"
)

// ErrNotFound is returned by Service.Lookup when no bucket matches the city.
var ErrNotFound = errors.New("city not found")

// Store is the read side of a city index. Implementations receive keys that
// are already normalized and report a missing bucket with ok == false.
type Store interface {
	Bucket(ctx context.Context, key string) (records []postal.Record, ok bool, err error)
}

// Publisher copies a built index into a remote store.
type Publisher interface {
	Publish(ctx context.Context, idx *CityIndex) error
}
