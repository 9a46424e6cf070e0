package region

import (
	"context"
	"strings"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const oregonURL = "https://www.oregon.gov/ovmeb/Documents/licensee-roster.csv"

// Oregon reads the Veterinary Medical Examining Board CSV roster. Names are
// published as "Last, First".
type Oregon struct {
	URL string
}

func (o *Oregon) Name() string           { return "oregon" }
func (o *Oregon) Code() string           { return "OR" }
func (o *Oregon) Kind() SourceKind       { return KindCSV }
func (o *Oregon) SnapshotOnSearch() bool { return true }

// Search reads the roster and keeps active DVM licensees.
func (o *Oregon) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	body, err := f.Download(ctx, o.URL)
	if err != nil {
		return nil, fetchErr(o.Name(), o.URL, err)
	}
	defer body.Close() //nolint:errcheck

	records, err := fetcher.ReadCSVRecords(ctx, body, fetcher.CSVOptions{TrimSpace: true})
	if err != nil {
		return nil, parseErr(o.Name(), err)
	}

	var vets []fetcher.Record
	for _, rec := range records {
		t := strings.ToLower(rec.Get("License Type"))
		if strings.Contains(t, "dvm") || strings.Contains(t, "veterinarian") {
			vets = append(vets, rec)
		}
	}
	return finalize(o.Name(), filter, rosterResults(vets, "", IsActive)), nil
}
