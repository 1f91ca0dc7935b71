package postal

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matst80/zipfinder/pkg/common/jsoncompat"
)

// Streaming parser for delimited postal code files with a header row, e.g.
//
//	zip,city,state,lat,lng
//	98101,Seattle,WA,47.61,-122.33
//
// The zip and city columns are located by name (case-insensitive, trimmed,
// BOM safe). Every other column is kept as a string field on the record,
// keyed by its header name; a column that would be written as zipCode or city
// is rejected. Entirely blank lines are skipped; any other row
// lacking a zip code or a city stops the stream with a *DatasetError.

// CSVConfig allows customization of the parser.
type CSVConfig struct {
	HeaderZipCode string
	HeaderCity    string

	// CSV field delimiter (defaults to ',').
	Delimiter rune
}

// DefaultCSVConfig expects "zip" and "city" columns separated by commas.
func DefaultCSVConfig() CSVConfig {
	return CSVConfig{
		HeaderZipCode: "zip",
		HeaderCity:    "city",
		Delimiter:     ',',
	}
}

func (cfg CSVConfig) withDefaults() CSVConfig {
	def := DefaultCSVConfig()
	if cfg.HeaderZipCode == "" {
		cfg.HeaderZipCode = def.HeaderZipCode
	}
	if cfg.HeaderCity == "" {
		cfg.HeaderCity = def.HeaderCity
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = def.Delimiter
	}
	return cfg
}

// StreamCSVRecords parses r and invokes emit for each record in file order.
// Stops early if emit returns an error.
func StreamCSVRecords(r io.Reader, cfg CSVConfig, emit func(Record) error) error {
	cfg = cfg.withDefaults()
	reader := csv.NewReader(NewNormalizedLineReader(r))
	reader.Comma = cfg.Delimiter
	reader.FieldsPerRecord = -1 // allow variable columns (we validate needed ones)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmpty
		}
		return fmt.Errorf("read header: %w", err)
	}

	cols, err := mapHeader(header, cfg)
	if err != nil {
		return err
	}

	row := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &DatasetError{Row: row + 1, Err: err}
		}
		row++

		if isBlank(record) {
			continue
		}

		rec, err := cols.extract(record)
		if err != nil {
			return &DatasetError{Row: row, Err: err}
		}
		if err := emit(rec); err != nil {
			return err
		}
	}
}

// headerColumns holds the indices of the required columns and the names of
// all columns.
type headerColumns struct {
	zipCode int
	city    int
	names   []string
}

func mapHeader(header []string, cfg CSVConfig) (headerColumns, error) {
	cols := headerColumns{
		zipCode: -1,
		city:    -1,
		names:   make([]string, len(header)),
	}
	zipTarget := strings.ToLower(strings.TrimSpace(cfg.HeaderZipCode))
	cityTarget := strings.ToLower(strings.TrimSpace(cfg.HeaderCity))
	for i, h := range header {
		name := strings.TrimSpace(stripBOM(h))
		cols.names[i] = name
		switch lower := strings.ToLower(name); {
		case lower == zipTarget && cols.zipCode < 0:
			cols.zipCode = i
		case lower == cityTarget && cols.city < 0:
			cols.city = i
		case lower == zipTarget, lower == cityTarget, name == zipCodeKey, name == cityKey:
			// would shadow the zipCode or city key of the record
			return headerColumns{}, fmt.Errorf("%w: %q", ErrReservedColumn, name)
		}
	}
	if cols.zipCode < 0 || cols.city < 0 {
		return headerColumns{}, ErrMissingColumns
	}
	return cols, nil
}

func (cols headerColumns) extract(record []string) (Record, error) {
	get := func(i int) string {
		if i >= 0 && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	zip := get(cols.zipCode)
	if zip == "" {
		return Record{}, ErrMissingZip
	}
	city := get(cols.city)
	if city == "" {
		return Record{}, ErrMissingCity
	}

	rec := Record{ZipCode: zip, City: city}
	for i, name := range cols.names {
		if i == cols.zipCode || i == cols.city || name == "" || i >= len(record) {
			continue
		}
		v, err := jsoncompat.Marshal(record[i])
		if err != nil {
			return Record{}, err
		}
		if rec.Fields == nil {
			rec.Fields = make(map[string]json.RawMessage, len(cols.names))
		}
		if _, dup := rec.Fields[name]; !dup {
			rec.order = append(rec.order, name)
		}
		rec.Fields[name] = v
	}
	return rec, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// NewNormalizedLineReader returns an io.Reader that strips a UTF-8 BOM
// if present at the very start and leaves everything else unchanged.
func NewNormalizedLineReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	b, err := br.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}

// stripBOM removes a leading UTF-8 BOM from a string (header cell safety).
func stripBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return s[3:]
	}
	return s
}
