package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/matst80/zipfinder/pkg/postal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(zip, city string) postal.Record {
	return postal.Record{ZipCode: zip, City: city}
}

func zips(records []postal.Record) []string {
	ret := make([]string, len(records))
	for i, r := range records {
		ret[i] = r.ZipCode
	}
	return ret
}

func sampleRecords() []postal.Record {
	return []postal.Record{
		rec("98101", "Seattle"),
		rec("02134", "Boston"),
		rec("98102", "seattle"),
		rec("97201", "Portland"),
		rec("04101", "Portland"),
		rec("98103", "SEATTLE"),
	}
}

func TestBuildGroupsByLowercaseCity(t *testing.T) {
	idx := Build(sampleRecords())

	assert.Equal(t, 6, idx.Len())
	assert.Equal(t, 3, idx.Cities())
	assert.Equal(t, []string{"seattle", "boston", "portland"}, idx.Keys())

	bucket, ok, err := idx.Bucket(context.Background(), "seattle")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"98101", "98102", "98103"}, zips(bucket))

	_, ok, err = idx.Bucket(context.Background(), "Seattle")
	require.NoError(t, err)
	assert.False(t, ok, "bucket keys are normalized")
}

func TestBuildIsDeterministic(t *testing.T) {
	records := sampleRecords()
	a := Build(records)
	b := Build(records)

	assert.Equal(t, a.Keys(), b.Keys())
	for key, bucket := range a.Buckets() {
		other, ok, _ := b.Bucket(context.Background(), key)
		require.True(t, ok, key)
		assert.Equal(t, bucket, other, key)
	}
}

func TestBucketCompleteness(t *testing.T) {
	records := sampleRecords()
	idx := Build(records)
	for _, r := range records {
		bucket, ok, _ := idx.Bucket(context.Background(), Normalize(r.City))
		require.True(t, ok)
		count := 0
		for _, b := range bucket {
			if b.ZipCode == r.ZipCode {
				count++
			}
		}
		assert.Equal(t, 1, count, "record %s should appear exactly once", r.ZipCode)
	}

	total := 0
	for _, bucket := range idx.Buckets() {
		total += len(bucket)
	}
	assert.Equal(t, len(records), total)
}

func TestBucketIsReadOnlyView(t *testing.T) {
	idx := Build([]postal.Record{rec("1", "X"), rec("2", "X")})
	bucket, _, _ := idx.Bucket(context.Background(), "x")
	_ = append(bucket, rec("3", "X"))

	again, _, _ := idx.Bucket(context.Background(), "x")
	assert.Equal(t, []string{"1", "2"}, zips(again))
}

func TestBuildLargeInput(t *testing.T) {
	records := make([]postal.Record, 0, 10000)
	for i := range 10000 {
		records = append(records, rec(fmt.Sprintf("%05d", i), fmt.Sprintf("City%d", i%100)))
	}
	idx := Build(records)
	assert.Equal(t, 100, idx.Cities())
	bucket, ok, _ := idx.Bucket(context.Background(), "city7")
	require.True(t, ok)
	require.Len(t, bucket, 100)
	assert.Equal(t, "00007", bucket[0].ZipCode)
	assert.Equal(t, "00107", bucket[1].ZipCode)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "seattle", Normalize("SeAttLe"))
	assert.Equal(t, " seattle ", Normalize(" Seattle "))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "malmö", Normalize("MALMÖ"))
}
