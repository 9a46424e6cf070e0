package region

import (
	"context"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const alabamaURL = "https://www.asbvme.alabama.gov/roster/veterinarians.json"

// Alabama reads the board's published roster, a single JSON array covering
// every licensee. Filtering happens locally.
type Alabama struct {
	URL string
}

type alabamaRecord struct {
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	LicenseNumber string `json:"license_no"`
	LicenseType   string `json:"license_type"`
	Status        string `json:"status"`
	IssueDate     string `json:"issued"`
	Expires       string `json:"expires"`
	City          string `json:"city"`
}

func (a *Alabama) Name() string           { return "alabama" }
func (a *Alabama) Code() string           { return "AL" }
func (a *Alabama) Kind() SourceKind       { return KindJSONFile }
func (a *Alabama) SnapshotOnSearch() bool { return true }

// Search downloads the roster and keeps active licensees matching filter.
func (a *Alabama) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	body, err := f.Download(ctx, a.URL)
	if err != nil {
		return nil, fetchErr(a.Name(), a.URL, err)
	}
	defer body.Close() //nolint:errcheck

	records, err := fetcher.DecodeJSONObject[[]alabamaRecord](body)
	if err != nil {
		return nil, parseErr(a.Name(), err)
	}

	results := make([]model.VerificationResult, 0, len(*records))
	for _, rec := range *records {
		if !equalFold(rec.Status, "active") {
			continue
		}
		results = append(results, model.VerificationResult{
			Name:           DisplayName(rec.FirstName, rec.MiddleName, rec.LastName),
			FirstName:      rec.FirstName,
			LastName:       rec.LastName,
			LicenseNumber:  rec.LicenseNumber,
			LicenseType:    rec.LicenseType,
			Status:         rec.Status,
			IssuedDate:     rec.IssueDate,
			ExpirationDate: rec.Expires,
			City:           rec.City,
		})
	}
	return finalize(a.Name(), filter, results), nil
}
