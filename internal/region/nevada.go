package region

import (
	"context"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const nevadaURL = "ftp://ftp.nvvetboard.us/roster/licensees.csv"

// Nevada pulls the board's CSV roster from its anonymous FTP server.
type Nevada struct {
	URL string
}

func (n *Nevada) Name() string           { return "nevada" }
func (n *Nevada) Code() string           { return "NV" }
func (n *Nevada) Kind() SourceKind       { return KindFTP }
func (n *Nevada) SnapshotOnSearch() bool { return true }

// Search reads the roster and keeps active veterinarians.
func (n *Nevada) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	body, err := f.Download(ctx, n.URL)
	if err != nil {
		return nil, fetchErr(n.Name(), n.URL, err)
	}
	defer body.Close() //nolint:errcheck

	records, err := fetcher.ReadCSVRecords(ctx, body, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
	if err != nil {
		return nil, parseErr(n.Name(), err)
	}
	return finalize(n.Name(), filter, rosterResults(records, "veterinarian", IsActive)), nil
}
