package region

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

const ohioURL = "https://elicense.ohio.gov/oh_verifylicense/rpc"

// Ohio talks JSON-RPC 2.0 to the eLicense verification service.
type Ohio struct {
	URL string
}

type ohioRequest struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      int        `json:"id"`
	Method  string     `json:"method"`
	Params  ohioParams `json:"params"`
}

type ohioParams struct {
	Board         string `json:"board"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	LicenseNumber string `json:"licenseNumber,omitempty"`
}

type ohioResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *ohioRPCError   `json:"error"`
}

type ohioRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ohioResult struct {
	Records []ohioRecord `json:"records"`
}

type ohioRecord struct {
	FullName       string `json:"fullName"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	LicenseNumber  string `json:"licenseNumber"`
	LicenseType    string `json:"licenseType"`
	Status         string `json:"status"`
	IssueDate      string `json:"issueDate"`
	ExpirationDate string `json:"expirationDate"`
	DetailURL      string `json:"detailUrl"`
	City           string `json:"city"`
}

func (o *Ohio) Name() string     { return "ohio" }
func (o *Ohio) Code() string     { return "OH" }
func (o *Ohio) Kind() SourceKind { return KindJSONRPC }

// Search calls License.Search for the veterinary board.
func (o *Ohio) Search(ctx context.Context, f fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	req := ohioRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "License.Search",
		Params: ohioParams{
			Board:         "VET",
			FirstName:     filter.FirstName,
			LastName:      filter.LastName,
			LicenseNumber: filter.LicenseNumber,
		},
	}

	body, err := f.PostJSON(ctx, o.URL, req)
	if err != nil {
		return nil, fetchErr(o.Name(), o.URL, err)
	}
	defer body.Close() //nolint:errcheck

	resp, err := fetcher.DecodeJSONObject[ohioResponse](body)
	if err != nil {
		return nil, parseErr(o.Name(), err)
	}
	if resp.Error != nil {
		return nil, fetchErr(o.Name(), o.URL, eris.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message))
	}

	var result ohioResult
	if len(resp.Result) > 0 && string(resp.Result) != "null" {
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return nil, parseErr(o.Name(), eris.Wrap(err, "decode result"))
		}
	}

	results := make([]model.VerificationResult, 0, len(result.Records))
	for _, rec := range result.Records {
		if !equalFold(rec.LicenseType, "veterinarian") || !IsActive(rec.Status) {
			continue
		}
		name := DisplayName(rec.FirstName, rec.LastName)
		if rec.FullName != "" {
			name = LastFirst(rec.FullName)
		}
		results = append(results, model.VerificationResult{
			Name:           name,
			FirstName:      rec.FirstName,
			LastName:       rec.LastName,
			LicenseNumber:  rec.LicenseNumber,
			LicenseType:    rec.LicenseType,
			Status:         rec.Status,
			IssuedDate:     rec.IssueDate,
			ExpirationDate: rec.ExpirationDate,
			DetailsURL:     rec.DetailURL,
			City:           rec.City,
		})
	}
	return finalize(o.Name(), filter, results), nil
}
