// Package lookup serves region datasets from the blob cache, falling back to a
// live adapter fetch whose result is written back to the cache.
package lookup

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/cache"
	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/metrics"
	"github.com/sells-group/vetverify/internal/model"
	"github.com/sells-group/vetverify/internal/region"
	"github.com/sells-group/vetverify/internal/resilience"
)

// Data sources reported in Response.Source.
const (
	SourceCache = "cache"
	SourceLive  = "live"
)

// Response is the outcome of Verify. Failures are reported in the value, never
// as a Go error.
type Response struct {
	OK        bool                       `json:"ok"`
	Region    string                     `json:"region"`
	Source    string                     `json:"source,omitempty"`
	Timestamp time.Time                  `json:"timestamp,omitzero"`
	Count     int                        `json:"count"`
	Results   []model.VerificationResult `json:"results"`
	Error     string                     `json:"error,omitempty"`
	Status    int                        `json:"status"`
}

// Service wires the region router, the blob cache and the local mirror.
type Service struct {
	registry *region.Registry
	fetcher  fetcher.Fetcher
	cache    *cache.Cache
	mirror   *cache.Mirror
	breakers *resilience.Breakers
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithMirror reconciles every served snapshot into a local mirror.
func WithMirror(m *cache.Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

// WithBreakers guards live fetches with per-region circuit breakers.
func WithBreakers(b *resilience.Breakers) Option {
	return func(s *Service) { s.breakers = b }
}

// WithMetrics records lookups, live fetches and cache writes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a lookup service.
func NewService(reg *region.Registry, f fetcher.Fetcher, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		fetcher:  f,
		cache:    c,
		breakers: resilience.NewBreakers(resilience.DefaultCircuitBreakerConfig()),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Registry returns the region router.
func (s *Service) Registry() *region.Registry { return s.registry }

// Cache returns the blob cache.
func (s *Service) Cache() *cache.Cache { return s.cache }

// Breakers returns the per-region circuit breakers.
func (s *Service) Breakers() *resilience.Breakers { return s.breakers }

// Verify serves the full dataset for code. A non-empty cached snapshot is
// returned as-is; a missing, unreadable or empty one triggers a live fetch
// whose result is written back. When the live fetch fails too, the response
// carries the reason with status 500.
func (s *Service) Verify(ctx context.Context, code string) Response {
	log := zap.L().With(zap.String("component", "lookup"), zap.String("code", code))

	a, err := s.registry.Resolve(code)
	if err != nil {
		return Response{Region: code, Error: err.Error(), Status: http.StatusBadRequest, Results: []model.VerificationResult{}}
	}
	name := a.Name()
	log = log.With(zap.String("region", name))

	if blob, ok := s.tryCache(ctx, log, name); ok {
		s.metrics.RecordLookup(name, SourceCache)
		s.reconcileMirror(ctx, log, blob)
		return Response{
			OK:        true,
			Region:    name,
			Source:    SourceCache,
			Timestamp: blob.Timestamp,
			Count:     blob.Count,
			Results:   blob.Results,
			Status:    http.StatusOK,
		}
	}

	results, err := s.liveFetch(ctx, a, model.Filter{})
	if err != nil {
		log.Error("live fetch failed", zap.Error(err))
		s.metrics.RecordLookup(name, "error")
		return Response{
			Region:  name,
			Error:   err.Error(),
			Status:  http.StatusInternalServerError,
			Results: []model.VerificationResult{},
		}
	}

	blob := model.NewRegionBlob(name, results, s.now())
	s.persist(ctx, log, blob)
	s.metrics.RecordLookup(name, SourceLive)
	return Response{
		OK:        true,
		Region:    name,
		Source:    SourceLive,
		Timestamp: blob.Timestamp,
		Count:     blob.Count,
		Results:   blob.Results,
		Status:    http.StatusOK,
	}
}

// Search dispatches a filtered live search to code's adapter. Snapshotting
// adapters asked for their full dataset also refresh the cache; that write is
// best-effort and never fails the search.
func (s *Service) Search(ctx context.Context, code string, filter model.Filter) ([]model.VerificationResult, error) {
	a, err := s.registry.Resolve(code)
	if err != nil {
		return nil, err
	}
	filter = filter.Normalize()

	results, err := s.liveFetch(ctx, a, filter)
	if err != nil {
		s.metrics.RecordSearch(a.Name(), "error")
		return nil, err
	}
	s.metrics.RecordSearch(a.Name(), "ok")

	if sn, ok := a.(region.Snapshotter); ok && sn.SnapshotOnSearch() && filter.IsEmpty() {
		log := zap.L().With(zap.String("component", "lookup"), zap.String("region", a.Name()))
		s.persist(ctx, log, model.NewRegionBlob(a.Name(), results, s.now()))
	}
	return results, nil
}

// Blob returns the stored snapshot for code verbatim.
func (s *Service) Blob(ctx context.Context, code string) ([]byte, error) {
	a, err := s.registry.Resolve(code)
	if err != nil {
		return nil, err
	}
	return s.cache.Raw(ctx, a.Name())
}

// Refresh live-fetches code's full dataset and writes it to the cache. Unlike
// Verify it ignores any cached snapshot and reports write failures.
func (s *Service) Refresh(ctx context.Context, code string) (cache.WriteResult, int, error) {
	a, err := s.registry.Resolve(code)
	if err != nil {
		return cache.WriteResult{}, 0, err
	}
	results, err := s.liveFetch(ctx, a, model.Filter{})
	if err != nil {
		return cache.WriteResult{}, 0, err
	}
	blob := model.NewRegionBlob(a.Name(), results, s.now())
	res, err := s.cache.Write(ctx, a.Name(), blob)
	s.metrics.RecordCacheWrite(a.Name(), string(res.Outcome), err)
	if err != nil {
		return cache.WriteResult{}, blob.Count, err
	}
	if s.mirror != nil && res.Outcome.Written() {
		if _, err := s.mirror.Reconcile(ctx, blob); err != nil {
			zap.L().Warn("mirror reconcile failed",
				zap.String("component", "lookup"),
				zap.String("region", a.Name()),
				zap.Error(err),
			)
		}
	}
	return res, blob.Count, nil
}

func (s *Service) tryCache(ctx context.Context, log *zap.Logger, name string) (*model.RegionBlob, bool) {
	blob, err := s.cache.Fetch(ctx, name)
	switch {
	case err == nil && !blob.IsEmpty():
		return blob, true
	case err == nil:
		log.Info("cached snapshot is empty, fetching live")
	case apperr.IsNotFound(err):
		log.Info("no cached snapshot, fetching live")
	default:
		log.Warn("cache read failed, fetching live", zap.Error(err))
	}
	return nil, false
}

func (s *Service) liveFetch(ctx context.Context, a region.Adapter, filter model.Filter) ([]model.VerificationResult, error) {
	start := time.Now()
	cb := s.breakers.Get(a.Name())
	results, err := resilience.ExecuteVal(ctx, cb, func(ctx context.Context) ([]model.VerificationResult, error) {
		return s.registry.Search(ctx, s.fetcher, a.Name(), filter)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		err = apperr.NewFetchError(a.Name(), "", err)
	}
	s.metrics.ObserveLiveFetch(a.Name(), time.Since(start), err)
	return results, err
}

// persist writes blob to the cache and mirror. Failures are logged and
// swallowed.
func (s *Service) persist(ctx context.Context, log *zap.Logger, blob *model.RegionBlob) {
	res, err := s.cache.Write(ctx, blob.Region, blob)
	s.metrics.RecordCacheWrite(blob.Region, string(res.Outcome), err)
	if err != nil {
		log.Warn("cache write failed", zap.Error(err))
	} else {
		log.Debug("cache write", zap.String("outcome", string(res.Outcome)), zap.String("location", res.Location))
	}
	s.reconcileMirror(ctx, log, blob)
}

func (s *Service) reconcileMirror(ctx context.Context, log *zap.Logger, blob *model.RegionBlob) {
	if s.mirror == nil {
		return
	}
	if _, err := s.mirror.Reconcile(ctx, blob); err != nil {
		log.Warn("mirror reconcile failed", zap.Error(err))
	}
}
