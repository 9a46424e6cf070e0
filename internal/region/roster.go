package region

import (
	"strings"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

// rosterResults maps tabular roster rows (CSV, XLSX) to results. Header
// spellings vary across boards, so each field accepts several aliases.
// Rows whose license type does not contain typeWord, or whose status fails
// active, are dropped. An empty typeWord accepts every type.
func rosterResults(records []fetcher.Record, typeWord string, active func(string) bool) []model.VerificationResult {
	results := make([]model.VerificationResult, 0, len(records))
	for _, rec := range records {
		licType := rec.Get("License Type", "Credential Type", "Profession", "Type")
		if typeWord != "" && !strings.Contains(strings.ToLower(licType), typeWord) {
			continue
		}
		status := rec.Get("Status", "License Status", "Credential Status")
		if !active(status) {
			continue
		}

		first := rec.Get("First Name", "First")
		last := rec.Get("Last Name", "Last")
		name := DisplayName(first, rec.Get("Middle Name", "Middle"), last)
		if name == "" {
			full := rec.Get("Name", "Full Name", "Licensee")
			name = LastFirst(full)
			first, last = SplitName(full)
		}

		results = append(results, model.VerificationResult{
			Name:           name,
			FirstName:      first,
			LastName:       last,
			LicenseNumber:  rec.Get("License Number", "License No", "LicenseNo", "Credential Number", "Credential"),
			LicenseType:    licType,
			Status:         status,
			IssuedDate:     rec.Get("Issue Date", "Issued", "Effective Date", "First Issuance Date"),
			ExpirationDate: rec.Get("Expiration Date", "Expires", "Expiration"),
			City:           rec.Get("City"),
		})
	}
	return results
}
