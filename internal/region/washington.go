package region

import (
	"context"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const washingtonURL = "https://doh.wa.gov/sites/default/files/rosters/Veterinarian.xlsx"

// Washington downloads the Department of Health credential workbook. The
// first sheet row is a title banner above the header row.
type Washington struct {
	URL     string
	TempDir string
}

func (w *Washington) Name() string           { return "washington" }
func (w *Washington) Code() string           { return "WA" }
func (w *Washington) Kind() SourceKind       { return KindXLSX }
func (w *Washington) SnapshotOnSearch() bool { return true }

// Search reads the workbook and keeps active veterinarian credentials.
func (w *Washington) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	_, path, cleanup, err := downloadTemp(ctx, f, w.Name(), w.URL, w.TempDir, "roster.xlsx")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	records, err := fetcher.ReadXLSXRecords(path, fetcher.XLSXOptions{SkipRows: 1})
	if err != nil {
		return nil, parseErr(w.Name(), err)
	}
	return finalize(w.Name(), filter, rosterResults(records, "veterinarian", IsActive)), nil
}
