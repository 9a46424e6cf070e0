package lookup

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/vetverify/internal/cache"
)

// RefreshOpts selects which regions to refresh and how.
type RefreshOpts struct {
	Regions     []string      // codes or names; empty refreshes every region
	Force       bool          // ignore MaxAge
	MaxAge      time.Duration // skip regions whose snapshot is younger than this
	Concurrency int           // parallel regions; default 4
}

// RegionReport is the refresh outcome for one region.
type RegionReport struct {
	Region   string        `json:"region"`
	Outcome  cache.Outcome `json:"outcome,omitempty"`
	Count    int           `json:"count"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RefreshReport summarizes an engine run.
type RefreshReport struct {
	Refreshed int64          `json:"refreshed"`
	Skipped   int64          `json:"skipped"`
	Failed    int64          `json:"failed"`
	Regions   []RegionReport `json:"regions"`
}

// Engine refreshes many regions' snapshots in parallel.
type Engine struct {
	svc *Service
	now func() time.Time
}

// NewEngine creates a refresh engine over svc.
func NewEngine(svc *Service) *Engine {
	return &Engine{svc: svc, now: time.Now}
}

// Refresh live-fetches the selected regions and writes their snapshots.
// Per-region failures are logged and counted; they never abort the run.
func (e *Engine) Refresh(ctx context.Context, opts RefreshOpts) (*RefreshReport, error) {
	log := zap.L().With(zap.String("component", "lookup.engine"))

	adapters, err := e.svc.registry.Select(opts.Regions)
	if err != nil {
		return nil, err
	}
	if len(adapters) == 0 {
		log.Info("no regions selected")
		return &RefreshReport{}, nil
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}
	log.Info("refreshing regions", zap.Int("count", len(adapters)), zap.Int("concurrency", limit))

	var refreshed, skipped, failed atomic.Int64
	var mu sync.Mutex
	reports := make([]RegionReport, 0, len(adapters))
	add := func(r RegionReport) {
		mu.Lock()
		reports = append(reports, r)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, a := range adapters {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			name := a.Name()
			rLog := log.With(zap.String("region", name))

			if !opts.Force && !e.due(gctx, name, opts.MaxAge) {
				rLog.Debug("skipping (snapshot is fresh)")
				skipped.Add(1)
				add(RegionReport{Region: name, Skipped: true})
				return nil
			}

			start := time.Now()
			res, count, err := e.svc.Refresh(gctx, name)
			elapsed := time.Since(start)
			if err != nil {
				rLog.Error("refresh failed", zap.Error(err), zap.Duration("elapsed", elapsed))
				failed.Add(1)
				add(RegionReport{Region: name, Error: err.Error(), Duration: elapsed})
				return nil
			}

			rLog.Info("refresh complete",
				zap.String("outcome", string(res.Outcome)),
				zap.Int("count", count),
				zap.Duration("elapsed", elapsed),
			)
			refreshed.Add(1)
			add(RegionReport{Region: name, Outcome: res.Outcome, Count: count, Duration: elapsed})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Region < reports[j].Region })
	report := &RefreshReport{
		Refreshed: refreshed.Load(),
		Skipped:   skipped.Load(),
		Failed:    failed.Load(),
		Regions:   reports,
	}
	log.Info("refresh run complete",
		zap.Int64("refreshed", report.Refreshed),
		zap.Int64("skipped", report.Skipped),
		zap.Int64("failed", report.Failed),
	)
	return report, nil
}

// due reports whether region needs a refresh: no usable snapshot, an empty
// one, or one older than maxAge.
func (e *Engine) due(ctx context.Context, region string, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	blob, err := e.svc.cache.Fetch(ctx, region)
	if err != nil || blob.IsEmpty() {
		return true
	}
	return e.now().Sub(blob.Timestamp) >= maxAge
}
