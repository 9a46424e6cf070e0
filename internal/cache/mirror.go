package cache

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/model"
)

// Mirror keeps a local copy of region blobs with the same file layout as the
// blob store. Writes follow the same freshness rule.
type Mirror struct {
	files     *FileBackend
	keySuffix string
}

// NewMirror creates a mirror rooted at dir.
func NewMirror(dir string) (*Mirror, error) {
	files, err := NewFileBackend(dir)
	if err != nil {
		return nil, err
	}
	return &Mirror{files: files, keySuffix: DefaultKeySuffix}, nil
}

// Dir returns the mirror directory.
func (m *Mirror) Dir() string { return m.files.Dir() }

// Load reads the mirrored blob for region. A missing file yields
// *apperr.NotFoundError.
func (m *Mirror) Load(ctx context.Context, region string) (*model.RegionBlob, error) {
	data, err := m.files.Get(ctx, region+m.keySuffix)
	if err != nil {
		return nil, err
	}
	var blob model.RegionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, apperr.NewParseError(region, eris.Wrap(err, "mirror: decode"))
	}
	blob.Normalize()
	return &blob, nil
}

// Reconcile writes incoming to the mirror when it is newer than the local
// copy. An unreadable local copy is overwritten.
func (m *Mirror) Reconcile(ctx context.Context, incoming *model.RegionBlob) (Outcome, error) {
	log := zap.L().With(zap.String("component", "cache.mirror"), zap.String("region", incoming.Region))

	existing, err := m.Load(ctx, incoming.Region)
	switch {
	case err == nil:
	case apperr.IsNotFound(err):
		existing = nil
	case apperr.IsParse(err):
		log.Warn("mirror copy is unreadable, overwriting", zap.Error(err))
		existing = nil
	default:
		return "", err
	}

	outcome := Compare(incoming, existing)
	if !outcome.Written() {
		if outcome == OutcomeRejected {
			log.Warn("mirror has a newer snapshot, keeping it",
				zap.Time("incoming", incoming.Timestamp),
				zap.Time("local", existing.Timestamp),
			)
		}
		return outcome, nil
	}

	data, err := json.MarshalIndent(incoming, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "mirror: encode")
	}
	if _, err := m.files.Put(ctx, incoming.Region+m.keySuffix, data); err != nil {
		return "", err
	}
	log.Debug("mirror updated", zap.String("outcome", string(outcome)))
	return outcome, nil
}
