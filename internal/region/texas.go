package region

import (
	"context"
	"net/url"
	"strings"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const texasURL = "https://www.tlbs.texas.gov/api/verify"

// Column positions in the Texas board's row arrays.
const (
	txColLicense = iota
	txColLast
	txColFirst
	txColType
	txColStatus
	txColIssued
	txColExpires
	txColCity
	txMinCols = txColExpires + 1
)

// Texas reads a JSON envelope whose rows are positional string arrays.
type Texas struct {
	URL string
}

type texasResponse struct {
	Columns []string   `json:"columns"`
	Data    [][]string `json:"data"`
}

func (t *Texas) Name() string     { return "texas" }
func (t *Texas) Code() string     { return "TX" }
func (t *Texas) Kind() SourceKind { return KindJSONAPI }

// Search queries the verification API. Rows shorter than the expected column
// count are skipped.
func (t *Texas) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	q := url.Values{}
	q.Set("type", "VET")
	q.Set("last", filter.LastName)
	q.Set("first", filter.FirstName)
	q.Set("lic", filter.LicenseNumber)
	reqURL := t.URL + "?" + q.Encode()

	body, err := f.Download(ctx, reqURL)
	if err != nil {
		return nil, fetchErr(t.Name(), reqURL, err)
	}
	defer body.Close() //nolint:errcheck

	resp, err := fetcher.DecodeJSONObject[texasResponse](body)
	if err != nil {
		return nil, parseErr(t.Name(), err)
	}

	results := make([]model.VerificationResult, 0, len(resp.Data))
	for _, row := range resp.Data {
		if len(row) < txMinCols {
			continue
		}
		if !strings.Contains(strings.ToLower(row[txColType]), "veterinarian") || !IsActive(row[txColStatus]) {
			continue
		}
		r := model.VerificationResult{
			Name:           DisplayName(row[txColFirst], row[txColLast]),
			FirstName:      row[txColFirst],
			LastName:       row[txColLast],
			LicenseNumber:  row[txColLicense],
			LicenseType:    row[txColType],
			Status:         row[txColStatus],
			IssuedDate:     row[txColIssued],
			ExpirationDate: row[txColExpires],
		}
		if len(row) > txColCity {
			r.City = row[txColCity]
		}
		results = append(results, r)
	}
	return finalize(t.Name(), filter, results), nil
}
