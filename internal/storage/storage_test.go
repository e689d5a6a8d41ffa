package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TharukaVishwajith/playwright-crawler/internal/models"
)

func TestListingsRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "listings.json")

	records := []models.ListingRecord{
		{
			Name:        "Test Laptop 15\"",
			Price:       "$1,299.99",
			Rating:      "4.7 out of 5 stars",
			ReviewCount: "213",
			URL:         "https://www.bestbuy.com/site/test-laptop/123.p",
		},
		{
			Name: "Budget Laptop",
			URL:  "https://www.bestbuy.com/site/budget-laptop/456.p",
		},
	}

	require.NoError(t, SaveListings(file, records))

	got, err := LoadListings(file)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestDetailsRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "details.json")

	records := []models.DetailRecord{
		models.NewDetailRecord(
			models.ListingRecord{Name: "Test Laptop", URL: "https://example.com/p/1"},
			map[string]string{"Screen Size": "15.6 inches", "RAM": "16GB"},
			[]models.ReviewRecord{{Title: "Great", Description: "Fast and quiet."}},
		),
		// Failed scrape: listing carried through with empty detail data.
		models.NewDetailRecord(
			models.ListingRecord{Name: "Other Laptop", URL: "https://example.com/p/2"},
			nil, nil,
		),
	}

	require.NoError(t, SaveDetails(file, records))

	got, err := LoadDetails(file)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0], got[0])
	assert.NotNil(t, got[1].Specifications)
	assert.NotNil(t, got[1].Reviews)
	assert.Empty(t, got[1].Specifications)
	assert.Empty(t, got[1].Reviews)
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	file := filepath.Join(t.TempDir(), "empty.json")

	require.NoError(t, SaveListings(file, nil))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	got, err := LoadListings(file)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := LoadListings(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "listings.json")

	require.NoError(t, SaveListings(file, []models.ListingRecord{{Name: "x", URL: "u"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "listings.json", entries[0].Name())
}
