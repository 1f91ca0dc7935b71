package postal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/matst80/zipfinder/pkg/common/jsoncompat"
)

const (
	zipCodeKey  = "zipCode"
	zipAliasKey = "zip"
	cityKey     = "city"
)

var (
	errNotObject     = errors.New("record is not an object")
	errCityNotString = errors.New("city must be a string")
)

// Record is one postal code entry. ZipCode is kept as text so leading zeros
// survive. Fields holds every other key of the source record as raw JSON.
type Record struct {
	ZipCode string
	City    string
	Fields  map[string]json.RawMessage
	// source order of the Fields keys
	order []string
}

// Field returns the raw JSON value of a pass-through field.
func (r Record) Field(name string) (json.RawMessage, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// FieldNames lists the pass-through fields in the order of the source record.
// Fields added outside the loader follow, sorted by name.
func (r Record) FieldNames() []string {
	if len(r.Fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Fields))
	for _, name := range r.order {
		if _, ok := r.Fields[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == len(r.Fields) {
		return names
	}
	var rest []string
	for name := range r.Fields {
		if !slices.Contains(names, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

// MarshalJSON writes zipCode and city first, then the pass-through fields in
// source order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, zipCodeKey, r.ZipCode); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, cityKey, r.City); err != nil {
		return nil, err
	}
	for _, name := range r.FieldNames() {
		if name == zipCodeKey || name == cityKey {
			return nil, fmt.Errorf("%w: %q", ErrReservedColumn, name)
		}
		buf.WriteByte(',')
		if err := writeMember(&buf, name, r.Fields[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := decodeRecord(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func writeMember(buf *bytes.Buffer, name string, value any) error {
	k, err := jsoncompat.Marshal(name)
	if err != nil {
		return err
	}
	var v []byte
	if raw, ok := value.(json.RawMessage); ok {
		v = raw
	} else if v, err = jsoncompat.Marshal(value); err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// decodeRecord parses a single JSON object into a Record, rejecting records
// without a usable zip code or city.
func decodeRecord(data []byte) (Record, error) {
	var obj map[string]json.RawMessage
	if err := jsoncompat.Unmarshal(data, &obj); err != nil {
		return Record{}, errNotObject
	}
	if obj == nil {
		return Record{}, errNotObject
	}

	zipField := zipCodeKey
	rawZip, ok := obj[zipCodeKey]
	if !ok {
		zipField = zipAliasKey
		rawZip, ok = obj[zipAliasKey]
	}
	if !ok {
		return Record{}, ErrMissingZip
	}
	var zip string
	if err := jsoncompat.Unmarshal(rawZip, &zip); err != nil {
		return Record{}, ErrZipNotString
	}
	if zip == "" {
		return Record{}, ErrMissingZip
	}

	rawCity, ok := obj[cityKey]
	if !ok {
		return Record{}, ErrMissingCity
	}
	var city string
	if err := jsoncompat.Unmarshal(rawCity, &city); err != nil {
		return Record{}, errCityNotString
	}
	if city == "" {
		return Record{}, ErrMissingCity
	}

	delete(obj, zipField)
	delete(obj, cityKey)
	if len(obj) == 0 {
		return Record{ZipCode: zip, City: city}, nil
	}
	keys, err := jsoncompat.ObjectKeys(data)
	if err != nil {
		return Record{}, errNotObject
	}
	order := make([]string, 0, len(obj))
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			order = append(order, k)
		}
	}
	return Record{ZipCode: zip, City: city, Fields: obj, order: order}, nil
}
