package storage

import (
	"encoding/json"
	"testing"

	"github.com/matst80/zipfinder/pkg/index"
	"github.com/matst80/zipfinder/pkg/postal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRows(t *testing.T) {
	var withFields postal.Record
	require.NoError(t, json.Unmarshal([]byte(`{"zip":"98101","city":"Seattle","state":"WA","lat":1}`), &withFields))
	idx := index.Build([]postal.Record{
		withFields,
		{ZipCode: "00501", City: "Holtsville"},
		{ZipCode: "98104", City: "SEATTLE"},
	})

	rows, err := recordRows(idx)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"seattle", 0, "98101", `{"zipCode":"98101","city":"Seattle","state":"WA","lat":1}`},
		{"seattle", 1, "98104", `{"zipCode":"98104","city":"SEATTLE"}`},
		{"holtsville", 0, "00501", `{"zipCode":"00501","city":"Holtsville"}`},
	}, rows)
	for _, row := range rows {
		assert.Len(t, row, len(recordColumns))
	}
}

func TestDecodeBucket(t *testing.T) {
	idx := index.Build([]postal.Record{
		{ZipCode: "98101", City: "Seattle"},
		{ZipCode: "98104", City: "seattle"},
	})
	rows, err := recordRows(idx)
	require.NoError(t, err)

	values := make([][]byte, len(rows))
	for i, row := range rows {
		values[i] = []byte(row[3].(string))
	}
	got, ok, err := decodeBucket("seattle", values)
	require.NoError(t, err)
	assert.True(t, ok)
	want, _, _ := idx.Bucket(t.Context(), "seattle")
	assert.Equal(t, want, got)

	got, ok, err = decodeBucket("atlantis", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	_, _, err = decodeBucket("seattle", [][]byte{[]byte(`{"city":"Seattle"}`)})
	assert.Error(t, err)
}
