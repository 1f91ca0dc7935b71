package server

import (
	"fmt"
	"net/url"

	"github.com/gorilla/schema"
)

const (
	FormatJson  = "json"
	FormatJsonl = "jsonl"
)

// LookupOptions are the query parameters accepted by the lookup endpoint.
type LookupOptions struct {
	Format string `schema:"format,default:json"`
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func DecodeLookupOptions(query url.Values) (LookupOptions, error) {
	opts := LookupOptions{}
	if err := decoder.Decode(&opts, query); err != nil {
		return opts, err
	}
	switch opts.Format {
	case FormatJson, FormatJsonl:
		return opts, nil
	}
	return opts, fmt.Errorf("unsupported format %q", opts.Format)
}
