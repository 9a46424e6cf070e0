package region

import (
	"context"

	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

// Fixture is an in-memory region used for smoke tests of the full lookup path.
// It never touches the network.
type Fixture struct {
	Records []model.VerificationResult
}

// NewFixture returns the fixture region seeded with a small mixed roster.
func NewFixture() *Fixture {
	return &Fixture{Records: []model.VerificationResult{
		{Name: "John Smith", FirstName: "John", LastName: "Smith", LicenseNumber: "VET-1001", Status: "Active", ExpirationDate: "2027-06-30", LicenseType: "Veterinarian"},
		{Name: "Jane Doe", FirstName: "Jane", LastName: "Doe", LicenseNumber: "VET-1002", Status: "Active", ExpirationDate: "2026-12-31", LicenseType: "Veterinarian"},
		{Name: "Johnny Smithers", FirstName: "Johnny", LastName: "Smithers", LicenseNumber: "VET-2040", Status: "Active", ExpirationDate: "2027-01-31", LicenseType: "Veterinarian"},
		{Name: "Old Vet", FirstName: "Old", LastName: "Vet", LicenseNumber: "VET-0003", Status: "Inactive", ExpirationDate: "2019-01-31", LicenseType: "Veterinarian"},
	}}
}

func (x *Fixture) Name() string           { return "test" }
func (x *Fixture) Code() string           { return "TEST" }
func (x *Fixture) Kind() SourceKind       { return KindFixture }
func (x *Fixture) SnapshotOnSearch() bool { return true }

// Search filters the seeded records; inactive ones never match.
func (x *Fixture) Search(_ context.Context, _ fetcher.Fetcher, filter model.Filter) ([]model.VerificationResult, error) {
	active := make([]model.VerificationResult, 0, len(x.Records))
	for _, r := range x.Records {
		if IsActive(r.Status) {
			active = append(active, r)
		}
	}
	return finalize(x.Name(), filter, active), nil
}
