package postal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when a dataset holds no records at all.
	ErrEmpty = errors.New("dataset contains no records")
	// ErrMissingCity is returned for a record without a non-empty city.
	ErrMissingCity = errors.New("record is missing city")
	// ErrMissingZip is returned for a record without a non-empty zip code.
	ErrMissingZip = errors.New("record is missing zip code")
	// ErrZipNotString is returned when the zip code is not JSON text.
	ErrZipNotString = errors.New("zip code must be a string")
	// ErrMissingColumns is returned if required header columns are not found.
	ErrMissingColumns = errors.New("missing required postal code columns")
	// ErrReservedColumn is returned when an extra column would be written under
	// the zipCode or city key, or a required column appears twice.
	ErrReservedColumn = errors.New("column name is reserved")
	// ErrUnknownFormat is returned when no loader matches a dataset name.
	ErrUnknownFormat = errors.New("unknown dataset format")
)

// DatasetError reports a dataset that could not be loaded. Row is the 1-based
// position of the offending record, or 0 when the failure is not tied to one.
type DatasetError struct {
	Source string
	Row    int
	Err    error
}

func (e *DatasetError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("dataset %s: record %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("dataset %s: %v", e.Source, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

func datasetError(source string, row int, err error) *DatasetError {
	return &DatasetError{Source: source, Row: row, Err: err}
}
