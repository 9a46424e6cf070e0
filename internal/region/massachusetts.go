package region

import (
	"context"
	"strings"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const massachusettsURL = "https://www.mass.gov/files/dpl/veterinary-medicine/licensees.xml"

// Massachusetts reads the Division of Professional Licensure XML roster.
type Massachusetts struct {
	URL string
}

type massLicensee struct {
	LicenseNumber  string `xml:"LicenseNumber"`
	FirstName      string `xml:"FirstName"`
	MiddleName     string `xml:"MiddleName"`
	LastName       string `xml:"LastName"`
	LicenseType    string `xml:"LicenseType"`
	Status         string `xml:"Status"`
	IssueDate      string `xml:"IssueDate"`
	ExpirationDate string `xml:"ExpirationDate"`
	City           string `xml:"City"`
}

func (m *Massachusetts) Name() string           { return "massachusetts" }
func (m *Massachusetts) Code() string           { return "MA" }
func (m *Massachusetts) Kind() SourceKind       { return KindXML }
func (m *Massachusetts) SnapshotOnSearch() bool { return true }

// Search streams <Licensee> elements and keeps current veterinarians.
func (m *Massachusetts) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	body, err := f.Download(ctx, m.URL)
	if err != nil {
		return nil, fetchErr(m.Name(), m.URL, err)
	}
	defer body.Close() //nolint:errcheck

	licensees, err := fetcher.DecodeXMLElements[massLicensee](ctx, body, "Licensee")
	if err != nil {
		return nil, parseErr(m.Name(), err)
	}

	results := make([]model.VerificationResult, 0, len(licensees))
	for _, l := range licensees {
		if !equalFold(l.Status, "current") {
			continue
		}
		if !strings.Contains(strings.ToLower(l.LicenseType), "veterinarian") {
			continue
		}
		results = append(results, model.VerificationResult{
			Name:           DisplayName(l.FirstName, l.MiddleName, l.LastName),
			FirstName:      strings.TrimSpace(l.FirstName),
			LastName:       strings.TrimSpace(l.LastName),
			LicenseNumber:  strings.TrimSpace(l.LicenseNumber),
			LicenseType:    strings.TrimSpace(l.LicenseType),
			Status:         strings.TrimSpace(l.Status),
			IssuedDate:     strings.TrimSpace(l.IssueDate),
			ExpirationDate: strings.TrimSpace(l.ExpirationDate),
			City:           strings.TrimSpace(l.City),
		})
	}
	return finalize(m.Name(), filter, results), nil
}
