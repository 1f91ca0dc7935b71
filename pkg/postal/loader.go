package postal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/matst80/zipfinder/pkg/common/jsoncompat"
)

// Format identifies how a dataset is encoded.
type Format int

const (
	FormatJSON Format = iota
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// FormatFromName picks the dataset format from a file name. A trailing .gz
// is ignored, decompression is the opener's job.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(path.Ext(strings.TrimSuffix(strings.ToLower(name), ".gz")))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	}
	return 0, ErrUnknownFormat
}

// Opener gives access to named dataset files.
type Opener interface {
	Open(name string) (io.ReadCloser, error)
}

// Loader reads a complete dataset into memory. It never returns a partial
// result: any problem with the source or with a single record fails the
// whole load with a *DatasetError.
type Loader struct {
	Source string
	Format Format
	CSV    CSVConfig
}

// Load reads every record from r.
func (l Loader) Load(r io.Reader) ([]Record, error) {
	var records []Record
	var err error
	switch l.Format {
	case FormatJSON:
		records, err = l.loadJSON(r)
	case FormatCSV:
		records, err = l.loadCSV(r)
	default:
		return nil, datasetError(l.Source, 0, ErrUnknownFormat)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, datasetError(l.Source, 0, ErrEmpty)
	}
	return records, nil
}

func (l Loader) loadJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, datasetError(l.Source, 0, fmt.Errorf("read: %w", err))
	}
	var raw []json.RawMessage
	if err := jsoncompat.Unmarshal(data, &raw); err != nil {
		return nil, datasetError(l.Source, 0, fmt.Errorf("decode: %w", err))
	}
	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		rec, err := decodeRecord(item)
		if err != nil {
			return nil, datasetError(l.Source, i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l Loader) loadCSV(r io.Reader) ([]Record, error) {
	records := make([]Record, 0, 1024)
	err := StreamCSVRecords(r, l.CSV, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		var de *DatasetError
		if errors.As(err, &de) {
			de.Source = l.Source
			return nil, de
		}
		return nil, datasetError(l.Source, 0, err)
	}
	return records, nil
}

// LoadFile opens name through o and loads it with the format implied by the
// file name.
func LoadFile(o Opener, name string, cfg CSVConfig) ([]Record, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, datasetError(name, 0, err)
	}
	f, err := o.Open(name)
	if err != nil {
		return nil, datasetError(name, 0, err)
	}
	defer f.Close()
	return Loader{Source: name, Format: format, CSV: cfg}.Load(f)
}
