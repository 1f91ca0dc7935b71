// Convert rewrites a postal code dataset into the JSON layout the zipfinder
// service loads fastest, e.g. a semicolon separated CSV into zips.json.gz.
package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/matst80/zipfinder/pkg/index"
	"github.com/matst80/zipfinder/pkg/postal"
	"github.com/matst80/zipfinder/pkg/storage"
)

var country = ""

func init() {
	c, ok := os.LookupEnv("COUNTRY")
	if ok {
		country = c
	}
}

func main() {
	var dataDir, input, output, zipColumn, cityColumn, delimiter string
	flag.StringVar(&dataDir, "data", "data", "data folder")
	flag.StringVar(&input, "in", "zips.csv", "input file, relative to the data folder")
	flag.StringVar(&output, "out", "zips.json.gz", "output file, .json or .json.gz")
	flag.StringVar(&zipColumn, "zip-column", "zip", "csv column holding the zip code")
	flag.StringVar(&cityColumn, "city-column", "city", "csv column holding the city name")
	flag.StringVar(&delimiter, "delimiter", ",", "csv field delimiter")
	flag.Parse()

	d, _ := utf8.DecodeRuneInString(delimiter)
	cfg := postal.CSVConfig{HeaderZipCode: zipColumn, HeaderCity: cityColumn, Delimiter: d}

	s := storage.NewDiskStorage(country, dataDir)
	records, err := postal.LoadFile(s, input, cfg)
	if err != nil {
		log.Fatalf("could not load %s: %v", input, err)
	}
	idx := index.Build(records)

	if strings.HasSuffix(output, ".gz") {
		err = s.SaveGzippedJson(records, output)
	} else {
		err = s.SaveJson(records, output)
	}
	if err != nil {
		log.Fatalf("could not save %s: %v", output, err)
	}
	log.Printf("converted %d zips in %d cities to %s", idx.Len(), idx.Cities(), output)
}
