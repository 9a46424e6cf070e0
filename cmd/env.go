package main

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/vetverify/internal/cache"
	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/lookup"
	"github.com/sells-group/vetverify/internal/metrics"
	"github.com/sells-group/vetverify/internal/region"
	"github.com/sells-group/vetverify/internal/resilience"
)

// lookupEnv holds everything a command needs to serve lookups.
type lookupEnv struct {
	Registry *region.Registry
	Cache    *cache.Cache
	Mirror   *cache.Mirror // nil when cache.mirror_dir is empty
	Breakers *resilience.Breakers
	Metrics  *metrics.Metrics
	Service  *lookup.Service

	closeBackend func() error
}

// Close releases the blob store connection.
func (e *lookupEnv) Close() {
	if e.closeBackend == nil {
		return
	}
	if err := e.closeBackend(); err != nil {
		zap.L().Warn("close blob store", zap.Error(err))
	}
}

// initEnv validates the config for mode, opens the blob store and builds the
// lookup service. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*lookupEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	backend, closeBackend, err := cache.OpenBackend(ctx, cache.BackendOptions{
		Kind: cfg.Cache.Backend,
		Dir:  cfg.Cache.Dir,
		S3: cache.S3Options{
			Bucket:   cfg.Cache.S3.Bucket,
			Region:   cfg.Cache.S3.Region,
			Endpoint: cfg.Cache.S3.Endpoint,
			Prefix:   cfg.Cache.S3.Prefix,
		},
		SQLitePath:  cfg.Cache.SQLite.Path,
		PostgresURL: cfg.Cache.Postgres.DatabaseURL,
	})
	if err != nil {
		return nil, err
	}

	var mirror *cache.Mirror
	if cfg.Cache.MirrorDir != "" {
		mirror, err = cache.NewMirror(cfg.Cache.MirrorDir)
		if err != nil {
			_ = closeBackend()
			return nil, err
		}
	}

	blobs := cache.New(backend,
		cache.WithKeySuffix(cfg.Cache.KeySuffix),
		cache.WithRetry(resilience.FromRetryConfig(cfg.Resilience.Retry.MaxAttempts, cfg.Resilience.Retry.InitialBackoffMs)),
	)

	m := metrics.New()
	breakers := resilience.NewBreakers(resilience.FromCircuitConfig(
		cfg.Resilience.Circuit.FailureThreshold,
		cfg.Resilience.Circuit.ResetTimeoutSecs,
	))

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout(),
		MaxRetries:   cfg.Fetch.MaxRetries,
		RateLimiters: rateLimiters(cfg.Fetch.RateLimits),
	})

	reg := region.NewDefaultRegistry(region.Options{
		URLs:    cfg.RegionURLs(),
		TempDir: cfg.Fetch.TempDir,
	})

	svc := lookup.NewService(reg, f, blobs,
		lookup.WithMirror(mirror),
		lookup.WithBreakers(breakers),
		lookup.WithMetrics(m),
	)

	zap.L().Debug("lookup environment ready",
		zap.String("backend", cfg.Cache.Backend),
		zap.Int("regions", len(reg.Names())),
	)

	return &lookupEnv{
		Registry:     reg,
		Cache:        blobs,
		Mirror:       mirror,
		Breakers:     breakers,
		Metrics:      m,
		Service:      svc,
		closeBackend: closeBackend,
	}, nil
}

// rateLimiters merges configured per-host limits over the defaults.
func rateLimiters(perHost map[string]float64) map[string]*rate.Limiter {
	out := fetcher.DefaultRateLimiters()
	for host, rps := range perHost {
		if rps <= 0 {
			continue
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		out[host] = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return out
}
