package region

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const (
	coloradoURL = "https://apps.colorado.gov/dora/licensing/api"

	// coloradoDetailConcurrency bounds parallel detail requests per search.
	coloradoDetailConcurrency = 8
)

// Colorado queries the DORA licensing API. The search endpoint omits dates,
// so each hit needs a second request to its detail endpoint.
type Colorado struct {
	BaseURL string
}

type coloradoSearchResponse struct {
	Items []coloradoItem `json:"items"`
}

type coloradoItem struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	LicenseNumber string `json:"licenseNumber"`
	LicenseType   string `json:"licenseType"`
	Status        string `json:"status"`
	City          string `json:"city"`
}

type coloradoDetail struct {
	IssueDate      string `json:"issueDate"`
	ExpirationDate string `json:"expirationDate"`
}

func (c *Colorado) Name() string     { return "colorado" }
func (c *Colorado) Code() string     { return "CO" }
func (c *Colorado) Kind() SourceKind { return KindJSONAPI }

// Search runs the list query, then enriches matches with their detail records.
// A failed detail request leaves that record's dates empty.
func (c *Colorado) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	q := url.Values{}
	q.Set("profession", "Veterinarian")
	q.Set("firstName", filter.FirstName)
	q.Set("lastName", filter.LastName)
	q.Set("licenseNumber", filter.LicenseNumber)
	searchURL := strings.TrimRight(c.BaseURL, "/") + "/licenses?" + q.Encode()

	body, err := f.Download(ctx, searchURL)
	if err != nil {
		return nil, fetchErr(c.Name(), searchURL, err)
	}
	resp, err := fetcher.DecodeJSONObject[coloradoSearchResponse](body)
	body.Close() //nolint:errcheck
	if err != nil {
		return nil, parseErr(c.Name(), err)
	}

	results := make([]model.VerificationResult, 0, len(resp.Items))
	for _, it := range resp.Items {
		if !equalFold(it.LicenseType, "veterinarian") || !IsActive(it.Status) {
			continue
		}
		results = append(results, model.VerificationResult{
			Name:          DisplayName(it.FirstName, it.LastName),
			ID:            it.ID,
			FirstName:     it.FirstName,
			LastName:      it.LastName,
			LicenseNumber: it.LicenseNumber,
			LicenseType:   it.LicenseType,
			Status:        it.Status,
			City:          it.City,
		})
	}
	results = finalize(c.Name(), filter, results)
	c.enrich(ctx, f, results)
	return results, nil
}

// enrich fills issue and expiration dates in place.
func (c *Colorado) enrich(ctx context.Context, f fetcher.Fetcher, results []model.VerificationResult) {
	log := zap.L().With(zap.String("component", "region.colorado"))

	var g errgroup.Group
	g.SetLimit(coloradoDetailConcurrency)
	for i := range results {
		if results[i].ID == "" {
			continue
		}
		g.Go(func() error {
			detailURL := strings.TrimRight(c.BaseURL, "/") + "/licenses/" + url.PathEscape(results[i].ID)
			d, err := c.detail(ctx, f, detailURL)
			if err != nil {
				log.Debug("detail fetch failed", zap.String("id", results[i].ID), zap.Error(err))
				return nil
			}
			results[i].IssuedDate = d.IssueDate
			results[i].ExpirationDate = d.ExpirationDate
			results[i].DetailsURL = detailURL
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Colorado) detail(ctx context.Context, f fetcher.Fetcher, detailURL string) (*coloradoDetail, error) {
	body, err := f.Download(ctx, detailURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck
	return fetcher.DecodeJSONObject[coloradoDetail](body)
}
