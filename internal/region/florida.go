package region

import (
	"context"
	"net/url"
	"strings"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const (
	floridaURL   = "https://mqa-internet.doh.state.fl.us/MQASearchServices/HealthCareProviders/LicenseVerification"
	floridaBoard = "2201"
)

// Column positions in the MQA results table.
const (
	flColLicense = iota
	flColName
	flColProfession
	flColCity
	flColStatus
	flColExpires
	flMinCols = flColStatus + 1
)

// Florida runs a GET search against the MQA portal and scrapes its table.
type Florida struct {
	URL string
}

func (fl *Florida) Name() string     { return "florida" }
func (fl *Florida) Code() string     { return "FL" }
func (fl *Florida) Kind() SourceKind { return KindHTMLGet }

// Search keeps veterinarians whose status reads active (e.g. "CLEAR/ACTIVE").
func (fl *Florida) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	q := url.Values{}
	q.Set("Board", floridaBoard)
	q.Set("LastName", filter.LastName)
	q.Set("FirstName", filter.FirstName)
	q.Set("LicNbr", filter.LicenseNumber)
	reqURL := fl.URL + "?" + q.Encode()

	body, err := f.Download(ctx, reqURL)
	if err != nil {
		return nil, fetchErr(fl.Name(), reqURL, err)
	}
	defer body.Close() //nolint:errcheck

	doc, err := fetcher.ReadHTML(body)
	if err != nil {
		return nil, parseErr(fl.Name(), err)
	}

	var results []model.VerificationResult
	for _, row := range TableRows(doc) {
		cells := RowCells(row)
		if len(cells) < flMinCols {
			continue
		}
		profession := CellText(cells[flColProfession])
		status := CellText(cells[flColStatus])
		if !strings.Contains(strings.ToLower(profession), "veterinarian") || !IsActive(status) {
			continue
		}
		raw := CellText(cells[flColName])
		first, last := SplitName(raw)
		r := model.VerificationResult{
			Name:          LastFirst(raw),
			FirstName:     first,
			LastName:      last,
			LicenseNumber: CellText(cells[flColLicense]),
			LicenseType:   profession,
			Status:        status,
			City:          CellText(cells[flColCity]),
			DetailsURL:    CellLink(cells[flColLicense], fl.URL),
		}
		if len(cells) > flColExpires {
			r.ExpirationDate = CellText(cells[flColExpires])
		}
		results = append(results, r)
	}
	return finalize(fl.Name(), filter, results), nil
}
