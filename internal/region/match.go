package region

import (
	"strings"

	"github.com/sells-group/vetverify/internal/model"
)

// MatchesFilter applies the filter rules shared by every region: first and last
// name match case-insensitively by prefix, license number by substring, blank
// filter fields match anything, and all fields must match.
func MatchesFilter(filter model.Filter, r model.VerificationResult) bool {
	first, last := r.FirstName, r.LastName
	if first == "" && last == "" {
		first, last = SplitName(r.Name)
	}
	return hasPrefixFold(first, filter.FirstName) &&
		hasPrefixFold(last, filter.LastName) &&
		containsFold(r.LicenseNumber, filter.LicenseNumber)
}

func hasPrefixFold(s, prefix string) bool {
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), strings.ToLower(prefix))
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
