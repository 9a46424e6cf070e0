package model

import (
	"encoding/json"
	"time"
)

// RegionBlob is the cached snapshot of one region's normalized dataset.
type RegionBlob struct {
	Timestamp time.Time            `json:"timestamp"`
	Region    string               `json:"region"`
	Count     int                  `json:"count"`
	Results   []VerificationResult `json:"results"`
}

// NewRegionBlob stamps a snapshot for region at now. Count always matches the
// number of results.
func NewRegionBlob(region string, results []VerificationResult, now time.Time) *RegionBlob {
	if results == nil {
		results = []VerificationResult{}
	}
	return &RegionBlob{
		Timestamp: now.UTC(),
		Region:    region,
		Count:     len(results),
		Results:   results,
	}
}

// PlaceholderBlob is the empty seed written before a region's first real
// snapshot. Its zero timestamp loses against any real snapshot.
func PlaceholderBlob(region string) *RegionBlob {
	return &RegionBlob{
		Timestamp: time.Time{}.UTC(),
		Region:    region,
		Count:     0,
		Results:   []VerificationResult{},
	}
}

// IsEmpty reports whether the snapshot holds no results.
func (b *RegionBlob) IsEmpty() bool {
	return b == nil || len(b.Results) == 0
}

// NewerThan reports whether b was produced strictly after other. A nil other
// is always older.
func (b *RegionBlob) NewerThan(other *RegionBlob) bool {
	if other == nil {
		return true
	}
	return b.Timestamp.After(other.Timestamp)
}

// Normalize repairs Count after decoding a blob written by another producer.
func (b *RegionBlob) Normalize() {
	if b.Results == nil {
		b.Results = []VerificationResult{}
	}
	b.Count = len(b.Results)
}

// UnmarshalJSON accepts the legacy "state" key as an alias of "region".
func (b *RegionBlob) UnmarshalJSON(data []byte) error {
	type plain RegionBlob
	var aux struct {
		plain
		State string `json:"state"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = RegionBlob(aux.plain)
	if b.Region == "" {
		b.Region = aux.State
	}
	return nil
}
