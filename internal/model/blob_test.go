package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegionBlob_CountMatchesResults(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	b := NewRegionBlob("alabama", []VerificationResult{{Name: "A"}, {Name: "B"}}, now)

	assert.Equal(t, "alabama", b.Region)
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, time.UTC, b.Timestamp.Location())
	assert.True(t, b.Timestamp.Equal(now))
}

func TestNewRegionBlob_NilResults(t *testing.T) {
	b := NewRegionBlob("ohio", nil, time.Now())
	require.NotNil(t, b.Results)
	assert.Equal(t, 0, b.Count)
	assert.True(t, b.IsEmpty())

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"results":[]`)
}

func TestPlaceholderBlob_LosesToAnySnapshot(t *testing.T) {
	seed := PlaceholderBlob("texas")
	snap := NewRegionBlob("texas", nil, time.Unix(0, 0))

	assert.True(t, seed.IsEmpty())
	assert.True(t, snap.NewerThan(seed))
	assert.False(t, seed.NewerThan(snap))
}

func TestRegionBlob_NewerThan(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := &RegionBlob{Timestamp: t0.Add(-time.Hour)}
	same := &RegionBlob{Timestamp: t0}
	newer := &RegionBlob{Timestamp: t0.Add(time.Second)}
	base := &RegionBlob{Timestamp: t0}

	assert.True(t, newer.NewerThan(base))
	assert.False(t, same.NewerThan(base))
	assert.False(t, older.NewerThan(base))
	assert.True(t, base.NewerThan(nil))
}

func TestRegionBlob_UnmarshalLegacyStateKey(t *testing.T) {
	raw := `{"timestamp":"2024-01-01T00:00:00.000Z","state":"alabama","count":1,"results":[{"name":"John Smith","licenseNumber":"123"}]}`

	var b RegionBlob
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	assert.Equal(t, "alabama", b.Region)
	assert.Equal(t, 1, b.Count)
	require.Len(t, b.Results, 1)
	assert.Equal(t, "John Smith", b.Results[0].Name)
	assert.Equal(t, "123", b.Results[0].LicenseNumber)
	assert.True(t, b.Timestamp.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRegionBlob_RegionKeyWinsOverState(t *testing.T) {
	raw := `{"timestamp":"2024-01-01T00:00:00Z","region":"ohio","state":"OH","count":0,"results":[]}`

	var b RegionBlob
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	assert.Equal(t, "ohio", b.Region)
}

func TestRegionBlob_NormalizeRepairsCount(t *testing.T) {
	b := &RegionBlob{Count: 7, Results: []VerificationResult{{Name: "x"}}}
	b.Normalize()
	assert.Equal(t, 1, b.Count)

	empty := &RegionBlob{Count: 3}
	empty.Normalize()
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Results)
}

func TestRegionBlob_InvalidJSON(t *testing.T) {
	var b RegionBlob
	assert.Error(t, json.Unmarshal([]byte(`{"timestamp":"not a time"}`), &b))
}
