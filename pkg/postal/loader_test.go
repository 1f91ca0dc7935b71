package postal

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zipsJSON = `[
  {"zip": "98101", "city": "Seattle", "state": "WA", "lat": 47.61},
  {"zipCode": "02134", "city": "Boston", "state": "MA"},
  {"zip": "98102", "city": "seattle", "state": "WA"}
]`

func loadJSON(t *testing.T, data string) ([]Record, error) {
	t.Helper()
	return Loader{Source: "test.json", Format: FormatJSON}.Load(strings.NewReader(data))
}

func TestLoadJSON(t *testing.T) {
	records, err := loadJSON(t, zipsJSON)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "98101", records[0].ZipCode)
	assert.Equal(t, "Seattle", records[0].City)
	assert.Equal(t, "02134", records[1].ZipCode, "leading zero must be kept")
	assert.Equal(t, "seattle", records[2].City)

	state, ok := records[0].Field("state")
	require.True(t, ok)
	assert.JSONEq(t, `"WA"`, string(state))
	_, hasZip := records[0].Field("zip")
	assert.False(t, hasZip, "zip alias should be promoted, not kept as a field")
}

func TestLoadJSONFailures(t *testing.T) {
	cases := []struct {
		name string
		data string
		row  int
		want error
	}{
		{"empty array", `[]`, 0, ErrEmpty},
		{"missing city", `[{"zip":"1","city":"A"},{"zip":"2"}]`, 2, ErrMissingCity},
		{"empty city", `[{"zip":"1","city":""}]`, 1, ErrMissingCity},
		{"missing zip", `[{"city":"A"}]`, 1, ErrMissingZip},
		{"numeric zip", `[{"zip":98101,"city":"Seattle"}]`, 1, ErrZipNotString},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := loadJSON(t, tc.data)
			assert.Nil(t, records)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var de *DatasetError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, "test.json", de.Source)
			assert.Equal(t, tc.row, de.Row)
		})
	}
}

func TestLoadJSONMalformed(t *testing.T) {
	for _, data := range []string{``, `{`, `{"zip":"1","city":"A"}`, `[1, 2]`, `[null]`} {
		_, err := loadJSON(t, data)
		var de *DatasetError
		assert.True(t, errors.As(err, &de), "expected dataset error for %q, got %v", data, err)
	}
}

type dirOpener string

func (d dirOpener) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), name))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zips.json"), []byte(zipsJSON), 0o644))

	records, err := LoadFile(dirOpener(dir), "zips.json", CSVConfig{})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = LoadFile(dirOpener(dir), "missing.json", CSVConfig{})
	var de *DatasetError
	require.True(t, errors.As(err, &de))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(dirOpener(dir), "zips.xml", CSVConfig{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromName(t *testing.T) {
	cases := map[string]Format{
		"zips.json":    FormatJSON,
		"zips.JSON.gz": FormatJSON,
		"se/zips.csv":  FormatCSV,
		"zips.csv.gz":  FormatCSV,
	}
	for name, want := range cases {
		got, err := FormatFromName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := FormatFromName("zips.gz")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
