package region

import (
	"context"
	"net/url"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const (
	californiaURL       = "https://search.dca.ca.gov/results"
	californiaBoardCode = "3300"
)

// Column positions in the DCA results table.
const (
	caColName = iota
	caColLicense
	caColType
	caColStatus
	caColCity
	caMinCols = caColStatus + 1
)

// California posts the DCA license search form and scrapes the results table.
// The status column combines status words and the expiration date, e.g.
// "Current, Active, 12/31/2025".
type California struct {
	URL string
}

func (c *California) Name() string     { return "california" }
func (c *California) Code() string     { return "CA" }
func (c *California) Kind() SourceKind { return KindHTMLForm }

// Search submits the form and keeps rows whose status is current and active.
func (c *California) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	form := url.Values{}
	form.Set("boardCode", californiaBoardCode)
	form.Set("licenseType", "Veterinarian")
	form.Set("firstName", filter.FirstName)
	form.Set("lastName", filter.LastName)
	form.Set("licenseNumber", filter.LicenseNumber)

	body, err := f.PostForm(ctx, c.URL, form)
	if err != nil {
		return nil, fetchErr(c.Name(), c.URL, err)
	}
	defer body.Close() //nolint:errcheck

	doc, err := fetcher.ReadHTML(body)
	if err != nil {
		return nil, parseErr(c.Name(), err)
	}

	var results []model.VerificationResult
	for _, row := range TableRows(doc) {
		cells := RowCells(row)
		if len(cells) < caMinCols {
			continue
		}
		status, expires := SplitStatusDate(CellText(cells[caColStatus]))
		if !IsCurrentActive(status) {
			continue
		}
		raw := CellText(cells[caColName])
		first, last := SplitName(raw)
		r := model.VerificationResult{
			Name:          LastFirst(raw),
			FirstName:     first,
			LastName:      last,
			LicenseNumber: CellText(cells[caColLicense]),
			LicenseType:   CellText(cells[caColType]),
			Status:        status,
			Expiration:    expires,
			DetailsURL:    CellLink(cells[caColName], c.URL),
		}
		if len(cells) > caColCity {
			r.City = CellText(cells[caColCity])
		}
		results = append(results, r)
	}
	return finalize(c.Name(), filter, results), nil
}
