package model

import "strings"

// VerificationResult is the normalized license record every region adapter
// produces. Only Name is required; each adapter fills the subset of fields its
// upstream source exposes. Status and date fields are kept verbatim because
// upstream vocabularies and formats differ per jurisdiction.
type VerificationResult struct {
	Name           string `json:"name"`
	LicenseNumber  string `json:"licenseNumber,omitempty"`
	Status         string `json:"status,omitempty"`
	IssuedDate     string `json:"issuedDate,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
	Expiration     string `json:"expiration,omitempty"`
	LicenseType    string `json:"licenseType,omitempty"`
	DetailsURL     string `json:"detailsUrl,omitempty"`
	ReportURL      string `json:"reportUrl,omitempty"`
	ID             string `json:"id,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	City           string `json:"city,omitempty"`
	Board          string `json:"board,omitempty"`
	Region         string `json:"region,omitempty"`
}

// Valid reports whether the record carries a usable display name.
func (r VerificationResult) Valid() bool {
	return strings.TrimSpace(r.Name) != ""
}

// Filter is the search input shared by all regions. Empty fields are wildcards.
type Filter struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	LicenseNumber string `json:"licenseNumber"`
}

// Normalize returns a copy with surrounding whitespace removed from every field.
func (f Filter) Normalize() Filter {
	return Filter{
		FirstName:     strings.TrimSpace(f.FirstName),
		LastName:      strings.TrimSpace(f.LastName),
		LicenseNumber: strings.TrimSpace(f.LicenseNumber),
	}
}

// IsEmpty reports whether the filter imposes no constraint at all, which is
// how callers request a region's full dataset.
func (f Filter) IsEmpty() bool {
	n := f.Normalize()
	return n.FirstName == "" && n.LastName == "" && n.LicenseNumber == ""
}
