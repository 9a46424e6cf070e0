package region

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const (
	newYorkURL        = "https://data.ny.gov/resource/ptn6-gnwe.json"
	newYorkProfession = "VETERINARIAN"
	newYorkRowLimit   = 5000
)

// NewYork queries the state's open-data (Socrata) endpoint with a SoQL
// $where clause, paging with $offset until a short page comes back.
type NewYork struct {
	URL      string
	PageSize int // default newYorkRowLimit
}

type newYorkRecord struct {
	LicenseNumber  string `json:"license_number"`
	FirstName      string `json:"first_name"`
	MiddleName     string `json:"middle_name"`
	LastName       string `json:"last_name"`
	Profession     string `json:"profession"`
	Status         string `json:"status"`
	LicensedOn     string `json:"date_of_licensure"`
	RegisteredThru string `json:"registered_through"`
	City           string `json:"city"`
}

func (n *NewYork) Name() string     { return "newyork" }
func (n *NewYork) Code() string     { return "NY" }
func (n *NewYork) Kind() SourceKind { return KindJSONAPI }

// Search builds the SoQL query and keeps registered veterinarians.
func (n *NewYork) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	pageSize := n.PageSize
	if pageSize <= 0 {
		pageSize = newYorkRowLimit
	}

	var results []model.VerificationResult
	for offset := 0; ; offset += pageSize {
		records, err := n.page(ctx, f, filter, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if !equalFold(rec.Profession, newYorkProfession) || !equalFold(rec.Status, "registered") {
				continue
			}
			results = append(results, model.VerificationResult{
				Name:           DisplayName(rec.FirstName, rec.MiddleName, rec.LastName),
				FirstName:      rec.FirstName,
				LastName:       rec.LastName,
				LicenseNumber:  rec.LicenseNumber,
				LicenseType:    rec.Profession,
				Status:         rec.Status,
				IssuedDate:     trimSocrataTime(rec.LicensedOn),
				ExpirationDate: trimSocrataTime(rec.RegisteredThru),
				City:           rec.City,
			})
		}
		if len(records) < pageSize {
			break
		}
	}
	return finalize(n.Name(), filter, results), nil
}

func (n *NewYork) page(ctx context.Context, f fetcher.Fetcher, filter model.Filter, limit, offset int) ([]newYorkRecord, error) {
	q := url.Values{}
	q.Set("$where", newYorkWhere(filter))
	q.Set("$limit", strconv.Itoa(limit))
	q.Set("$offset", strconv.Itoa(offset))
	q.Set("$order", "last_name,first_name,license_number")
	reqURL := n.URL + "?" + q.Encode()

	body, err := f.Download(ctx, reqURL)
	if err != nil {
		return nil, fetchErr(n.Name(), reqURL, err)
	}
	defer body.Close() //nolint:errcheck

	records, err := fetcher.DecodeJSONObject[[]newYorkRecord](body)
	if err != nil {
		return nil, parseErr(n.Name(), err)
	}
	return *records, nil
}

// newYorkWhere renders the SoQL predicate. Name fields are prefix matches on
// upper-cased columns; the license number is a substring match.
func newYorkWhere(filter model.Filter) string {
	clauses := []string{"profession='" + newYorkProfession + "'"}
	if filter.LastName != "" {
		clauses = append(clauses, "upper(last_name) like '"+soqlEscape(strings.ToUpper(filter.LastName))+"%'")
	}
	if filter.FirstName != "" {
		clauses = append(clauses, "upper(first_name) like '"+soqlEscape(strings.ToUpper(filter.FirstName))+"%'")
	}
	if filter.LicenseNumber != "" {
		clauses = append(clauses, "license_number like '%"+soqlEscape(filter.LicenseNumber)+"%'")
	}
	return strings.Join(clauses, " AND ")
}

func soqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// trimSocrataTime drops the midnight time Socrata appends to date columns.
func trimSocrataTime(s string) string {
	if date, _, ok := strings.Cut(s, "T"); ok {
		return date
	}
	return s
}
