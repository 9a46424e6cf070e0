package cache

import "github.com/sells-group/vetverify/internal/model"

// Outcome is the result of applying the freshness rule to a write.
type Outcome string

const (
	// OutcomeCreated means no blob existed and incoming was stored.
	OutcomeCreated Outcome = "created"
	// OutcomeReplaced means incoming was strictly newer and replaced the blob.
	OutcomeReplaced Outcome = "replaced"
	// OutcomeUnchanged means incoming carried the same timestamp; nothing was written.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeRejected means incoming was older than the stored blob.
	OutcomeRejected Outcome = "rejected"
)

// Compare applies the freshness rule shared by the blob store and the local
// mirror: a missing blob is created, a strictly newer blob replaces, an equal
// timestamp is a no-op and an older blob is rejected.
func Compare(incoming, existing *model.RegionBlob) Outcome {
	switch {
	case existing == nil:
		return OutcomeCreated
	case incoming.NewerThan(existing):
		return OutcomeReplaced
	case incoming.Timestamp.Equal(existing.Timestamp):
		return OutcomeUnchanged
	default:
		return OutcomeRejected
	}
}

// Written reports whether the outcome stored new content.
func (o Outcome) Written() bool {
	return o == OutcomeCreated || o == OutcomeReplaced
}
