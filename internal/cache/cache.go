package cache

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/model"
	"github.com/sells-group/vetverify/internal/resilience"
)

// DefaultKeySuffix is appended to the region name to form its blob key.
const DefaultKeySuffix = "Vets.json"

// WriteResult reports where a blob lives and what the write did.
type WriteResult struct {
	Location string  `json:"location"`
	Outcome  Outcome `json:"outcome"`
}

// Cache reads and writes region snapshots through a Backend.
type Cache struct {
	backend   Backend
	keySuffix string
	retry     resilience.RetryConfig
}

// Option customizes a Cache.
type Option func(*Cache)

// WithKeySuffix overrides DefaultKeySuffix.
func WithKeySuffix(suffix string) Option {
	return func(c *Cache) {
		if suffix != "" {
			c.keySuffix = suffix
		}
	}
}

// WithRetry sets the retry policy for durable puts.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Cache) { c.retry = cfg }
}

// New creates a Cache over backend.
func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend:   backend,
		keySuffix: DefaultKeySuffix,
		retry:     resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.RetryLogger("cache", "put")
	return c
}

// Key returns the blob key for region.
func (c *Cache) Key(region string) string {
	return region + c.keySuffix
}

// Location returns where region's blob lives in the backend.
func (c *Cache) Location(region string) string {
	return c.backend.Location(c.Key(region))
}

// Exists reports whether region has a stored blob. Listing failures are
// logged and reported as absent.
func (c *Cache) Exists(ctx context.Context, region string) bool {
	key := c.Key(region)
	keys, err := c.backend.List(ctx, key)
	if err != nil {
		zap.L().Warn("cache list failed, treating blob as absent",
			zap.String("component", "cache"),
			zap.String("region", region),
			zap.Error(err),
		)
		return false
	}
	return slices.Contains(keys, key)
}

// Fetch returns the stored blob for region. A missing blob yields
// *apperr.NotFoundError; an unreadable or undecodable one yields
// *apperr.FetchError or *apperr.ParseError.
func (c *Cache) Fetch(ctx context.Context, region string) (*model.RegionBlob, error) {
	data, err := c.Raw(ctx, region)
	if err != nil {
		return nil, err
	}
	var blob model.RegionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, apperr.NewParseError(region, eris.Wrapf(err, "cache: decode %s", c.Key(region)))
	}
	blob.Normalize()
	if blob.Region == "" {
		blob.Region = region
	}
	return &blob, nil
}

// Raw returns the stored bytes for region without decoding them.
func (c *Cache) Raw(ctx context.Context, region string) ([]byte, error) {
	key := c.Key(region)
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.NewFetchError(region, c.backend.Location(key), err)
	}
	return data, nil
}

// Write stores blob for region under the freshness rule. A region without a
// stored blob is first seeded with an empty placeholder. Rejected and
// unchanged writes are not errors; only store failures are.
func (c *Cache) Write(ctx context.Context, region string, blob *model.RegionBlob) (WriteResult, error) {
	log := zap.L().With(zap.String("component", "cache"), zap.String("region", region))
	key := c.Key(region)

	incoming := *blob
	incoming.Region = region
	incoming.Normalize()

	// Exists fails open, so a negative answer is confirmed with a Get before
	// the placeholder goes down.
	listed := c.Exists(ctx, region)
	var existing *model.RegionBlob
	seeded := false
	cur, err := c.Fetch(ctx, region)
	switch {
	case err == nil:
		if !listed {
			log.Debug("blob present although listing missed it")
		}
		existing = cur
	case apperr.IsParse(err):
		log.Warn("stored blob is unreadable, overwriting", zap.Error(err))
	case apperr.IsNotFound(err):
		if _, err := c.put(ctx, key, model.PlaceholderBlob(region)); err != nil {
			return WriteResult{}, err
		}
		seeded = true
		existing = model.PlaceholderBlob(region)
	default:
		return WriteResult{}, err
	}

	outcome := Compare(&incoming, existing)
	switch outcome {
	case OutcomeRejected:
		log.Warn("rejecting older snapshot",
			zap.Time("incoming", incoming.Timestamp),
			zap.Time("stored", existing.Timestamp),
		)
		return WriteResult{Location: c.backend.Location(key), Outcome: outcome}, nil
	case OutcomeUnchanged:
		log.Debug("snapshot unchanged", zap.Time("timestamp", incoming.Timestamp))
		return WriteResult{Location: c.backend.Location(key), Outcome: outcome}, nil
	}

	loc, err := c.put(ctx, key, &incoming)
	if err != nil {
		return WriteResult{}, err
	}
	if seeded {
		outcome = OutcomeCreated
	}
	log.Info("snapshot stored",
		zap.String("location", loc),
		zap.String("outcome", string(outcome)),
		zap.Int("count", incoming.Count),
	)
	return WriteResult{Location: loc, Outcome: outcome}, nil
}

// Regions lists the regions that have a stored blob.
func (c *Cache) Regions(ctx context.Context) ([]string, error) {
	keys, err := c.backend.List(ctx, "")
	if err != nil {
		return nil, err
	}
	var regions []string
	for _, k := range keys {
		if region, ok := strings.CutSuffix(k, c.keySuffix); ok && region != "" {
			regions = append(regions, region)
		}
	}
	return regions, nil
}

func (c *Cache) put(ctx context.Context, key string, blob *model.RegionBlob) (string, error) {
	data, err := json.Marshal(blob)
	if err != nil {
		return "", eris.Wrapf(err, "cache: encode %s", key)
	}
	loc, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.backend.Put(ctx, key, data)
	})
	if err != nil {
		return "", apperr.NewFetchError(blob.Region, c.backend.Location(key), err)
	}
	return loc, nil
}
