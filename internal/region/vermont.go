package region

import (
	"context"
	"os"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const vermontURL = "https://sos.vermont.gov/media/opr/rosters/veterinary-medicine.zip"

// Vermont downloads the Office of Professional Regulation roster, a ZIP
// archive holding one CSV file.
type Vermont struct {
	URL     string
	TempDir string
}

func (v *Vermont) Name() string           { return "vermont" }
func (v *Vermont) Code() string           { return "VT" }
func (v *Vermont) Kind() SourceKind       { return KindZIP }
func (v *Vermont) SnapshotOnSearch() bool { return true }

// Search extracts the CSV and keeps active veterinarians.
func (v *Vermont) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	dir, zipPath, cleanup, err := downloadTemp(ctx, f, v.Name(), v.URL, v.TempDir, "roster.zip")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	csvPath, err := fetcher.ExtractZIPByExt(zipPath, ".csv", dir)
	if err != nil {
		return nil, parseErr(v.Name(), err)
	}

	file, err := os.Open(csvPath) //nolint:gosec // path produced by ExtractZIPByExt
	if err != nil {
		return nil, parseErr(v.Name(), err)
	}
	defer file.Close() //nolint:errcheck

	records, err := fetcher.ReadCSVRecords(ctx, file, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
	if err != nil {
		return nil, parseErr(v.Name(), err)
	}
	return finalize(v.Name(), filter, rosterResults(records, "veterinarian", IsActive)), nil
}
