package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/TharukaVishwajith/playwright-crawler/internal/models"
)

// SaveListings writes the listing records as a pretty-printed JSON array.
func SaveListings(filename string, records []models.ListingRecord) error {
	if records == nil {
		records = []models.ListingRecord{}
	}
	return writeJSON(filename, records)
}

// LoadListings reads a listing file written by SaveListings.
func LoadListings(filename string) ([]models.ListingRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read listings file %s: %w", filename, err)
	}

	var records []models.ListingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse listings file %s: %w", filename, err)
	}

	return records, nil
}

// SaveDetails writes the enriched detail records as a pretty-printed JSON array.
func SaveDetails(filename string, records []models.DetailRecord) error {
	if records == nil {
		records = []models.DetailRecord{}
	}
	return writeJSON(filename, records)
}

// LoadDetails reads a detail file written by SaveDetails.
func LoadDetails(filename string) ([]models.DetailRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read details file %s: %w", filename, err)
	}

	var records []models.DetailRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse details file %s: %w", filename, err)
	}

	return records, nil
}

func writeJSON(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	// Write to temp file first for atomicity
	tmpFile := filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}

	if err := os.Rename(tmpFile, filename); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmpFile, err)
	}

	return nil
}
