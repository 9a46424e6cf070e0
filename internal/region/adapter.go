// Package region holds one adapter per licensing jurisdiction and the registry
// that routes a jurisdiction code to its adapter. Each adapter absorbs its
// upstream's query dialect and response shape and emits model.VerificationResult.
package region

import (
	"context"
	"errors"
	"strings"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

// SourceKind describes how an adapter reaches its upstream.
type SourceKind string

const (
	KindJSONFile SourceKind = "json_file"
	KindJSONAPI  SourceKind = "json_api"
	KindJSONRPC  SourceKind = "json_rpc"
	KindHTMLForm SourceKind = "html_form"
	KindHTMLGet  SourceKind = "html_get"
	KindCSV      SourceKind = "csv"
	KindZIP      SourceKind = "zip_csv"
	KindXLSX     SourceKind = "xlsx"
	KindXML      SourceKind = "xml"
	KindFTP      SourceKind = "ftp_csv"
	KindFixture  SourceKind = "fixture"
)

// Adapter defines the interface each jurisdiction must implement.
type Adapter interface {
	// Name returns the region key used for cache blobs (e.g., "california").
	Name() string

	// Code returns the jurisdiction code (e.g., "CA", "ON").
	Code() string

	// Kind returns how the upstream is reached.
	Kind() SourceKind

	// Search returns the records matching filter. An empty filter requests the
	// region's full dataset. Zero matches is not an error.
	Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error)
}

// Snapshotter is implemented by adapters whose full-dataset searches should be
// written back to the blob cache as a side effect.
type Snapshotter interface {
	Adapter
	SnapshotOnSearch() bool
}

// finalize drops records without a display name, applies the filter with the
// uniform matching rules and tags each record with its region. Source order is
// preserved.
func finalize(region string, filter model.Filter, in []model.VerificationResult) []model.VerificationResult {
	filter = filter.Normalize()
	out := make([]model.VerificationResult, 0, len(in))
	for _, r := range in {
		r.Name = collapseSpace(r.Name)
		if !r.Valid() {
			continue
		}
		if !MatchesFilter(filter, r) {
			continue
		}
		r.Region = region
		out = append(out, r)
	}
	return out
}

// fetchErr converts a transport error into an apperr.FetchError, carrying the
// upstream status code when there was one.
func fetchErr(region, url string, err error) error {
	fe := apperr.NewFetchError(region, url, err)
	var se *fetcher.StatusError
	if errors.As(err, &se) {
		fe.StatusCode = se.StatusCode
	}
	return fe
}

func parseErr(region string, err error) error {
	return apperr.NewParseError(region, err)
}

// equalFold reports whether s equals want ignoring case and surrounding space.
func equalFold(s, want string) bool {
	return strings.EqualFold(strings.TrimSpace(s), want)
}

// IsActive reports whether an upstream status reads as active. "Inactive"
// never counts.
func IsActive(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "active") && !strings.Contains(s, "inactive")
}

// IsCurrentActive is the stricter predicate used by portals whose status cell
// reads "Current, Active": both words must be present.
func IsCurrentActive(status string) bool {
	return IsActive(status) && strings.Contains(strings.ToLower(status), "current")
}
