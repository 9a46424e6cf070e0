package region

import (
	"context"
	"net/url"
	"strings"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const ontarioURL = "https://registry.cvo.org/api/v1"

// Ontario queries the College of Veterinarians of Ontario public register.
type Ontario struct {
	BaseURL string
}

type ontarioResponse struct {
	Members []ontarioMember `json:"members"`
}

type ontarioMember struct {
	RegistrationNumber string `json:"registrationNumber"`
	GivenName          string `json:"givenName"`
	FamilyName         string `json:"familyName"`
	RegistrationClass  string `json:"registrationClass"`
	Status             string `json:"status"`
	Issued             string `json:"issued"`
	DetailsLink        string `json:"detailsLink"`
	City               string `json:"city"`
}

func (o *Ontario) Name() string     { return "ontario" }
func (o *Ontario) Code() string     { return "ON" }
func (o *Ontario) Kind() SourceKind { return KindJSONAPI }

// Search queries the members endpoint and keeps members in good standing.
func (o *Ontario) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	q := url.Values{}
	if filter.FirstName != "" {
		q.Set("givenName", filter.FirstName)
	}
	if filter.LastName != "" {
		q.Set("familyName", filter.LastName)
	}
	if filter.LicenseNumber != "" {
		q.Set("registrationNumber", filter.LicenseNumber)
	}
	reqURL := strings.TrimRight(o.BaseURL, "/") + "/members"
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	body, err := f.Download(ctx, reqURL)
	if err != nil {
		return nil, fetchErr(o.Name(), reqURL, err)
	}
	defer body.Close() //nolint:errcheck

	resp, err := fetcher.DecodeJSONObject[ontarioResponse](body)
	if err != nil {
		return nil, parseErr(o.Name(), err)
	}

	results := make([]model.VerificationResult, 0, len(resp.Members))
	for _, m := range resp.Members {
		if !IsActive(m.Status) {
			continue
		}
		results = append(results, model.VerificationResult{
			Name:          DisplayName(m.GivenName, m.FamilyName),
			FirstName:     m.GivenName,
			LastName:      m.FamilyName,
			LicenseNumber: m.RegistrationNumber,
			LicenseType:   m.RegistrationClass,
			Status:        m.Status,
			IssuedDate:    m.Issued,
			DetailsURL:    m.DetailsLink,
			City:          m.City,
		})
	}
	return finalize(o.Name(), filter, results), nil
}
