package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/metrics"
	"github.com/sells-group/vetverify/internal/model"
	"github.com/sells-group/vetverify/internal/region"
	"github.com/sells-group/vetverify/internal/resilience"
)

// RegionStatus is the health of one region's cached snapshot.
type RegionStatus struct {
	Region    string        `json:"region"`
	Code      string        `json:"code"`
	Present   bool          `json:"present"`
	Timestamp time.Time     `json:"timestamp,omitzero"`
	Count     int           `json:"count"`
	Age       time.Duration `json:"age"`
	Stale     bool          `json:"stale"`
	Circuit   string        `json:"circuit,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Snapshot holds a point-in-time view of every region's cache health.
type Snapshot struct {
	Regions      []RegionStatus `json:"regions"`
	Missing      int            `json:"missing"`
	Stale        int            `json:"stale"`
	OpenCircuits int            `json:"open_circuits"`
	StaleAfter   time.Duration  `json:"stale_after"`
	CollectedAt  time.Time      `json:"collected_at"`
}

// BlobReader abstracts the cache read the collector needs.
type BlobReader interface {
	Fetch(ctx context.Context, region string) (*model.RegionBlob, error)
}

// Collector inspects cached snapshots and circuit breakers.
type Collector struct {
	registry *region.Registry
	blobs    BlobReader
	breakers *resilience.Breakers
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewCollector creates a new freshness collector. Breakers and metrics may be nil.
func NewCollector(reg *region.Registry, blobs BlobReader, breakers *resilience.Breakers, m *metrics.Metrics) *Collector {
	return &Collector{
		registry: reg,
		blobs:    blobs,
		breakers: breakers,
		metrics:  m,
		now:      time.Now,
	}
}

// Collect gathers the freshness of every registered region. A snapshot older
// than staleAfter, or one with no results, is stale.
func (c *Collector) Collect(ctx context.Context, staleAfter time.Duration) (*Snapshot, error) {
	now := c.now().UTC()
	snap := &Snapshot{
		StaleAfter:  staleAfter,
		CollectedAt: now,
	}

	circuits := make(map[string]string)
	if c.breakers != nil {
		for _, b := range c.breakers.Snapshot() {
			circuits[b.Name] = b.State
		}
	}

	for _, a := range c.registry.All() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "monitoring: collect")
		}

		st := RegionStatus{Region: a.Name(), Code: a.Code(), Circuit: circuits[a.Name()]}
		if st.Circuit == resilience.CircuitOpen.String() {
			snap.OpenCircuits++
		}

		blob, err := c.blobs.Fetch(ctx, a.Name())
		switch {
		case err == nil:
			st.Present = true
			st.Timestamp = blob.Timestamp
			st.Count = blob.Count
			st.Age = now.Sub(blob.Timestamp)
			st.Stale = blob.IsEmpty() || (staleAfter > 0 && st.Age >= staleAfter)
			c.metrics.SetBlobAge(a.Name(), st.Age)
		case apperr.IsNotFound(err):
			snap.Missing++
		default:
			st.Error = err.Error()
			st.Stale = true
		}
		if st.Stale {
			snap.Stale++
		}
		snap.Regions = append(snap.Regions, st)
	}

	return snap, nil
}
