package region

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/model"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewFixture())

	got, err := reg.Resolve("test")
	require.NoError(t, err)
	assert.Equal(t, "TEST", got.Code())

	_, err = NewRegistry().Resolve("test")
	require.Error(t, err)
	assert.True(t, apperr.IsUnsupportedRegion(err))
}

func TestRegistry_Resolve(t *testing.T) {
	reg := NewDefaultRegistry(Options{})

	for _, code := range []string{"CA", "ca", "California", " california "} {
		a, err := reg.Resolve(code)
		require.NoError(t, err, code)
		assert.Equal(t, "california", a.Name())
	}

	a, err := reg.Resolve("New York")
	require.NoError(t, err)
	assert.Equal(t, "newyork", a.Name())

	_, err = reg.Resolve("ZZ")
	require.Error(t, err)
	assert.True(t, apperr.IsUnsupportedRegion(err))
	assert.Contains(t, err.Error(), `"ZZ"`)
}

func TestRegistry_RegisterTwiceKeepsPosition(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Alabama{URL: "a"})
	reg.Register(NewFixture())
	reg.Register(&Alabama{URL: "b"})

	assert.Equal(t, []string{"alabama", "test"}, reg.Names())
	a, err := reg.Resolve("alabama")
	require.NoError(t, err)
	assert.Equal(t, "b", a.(*Alabama).URL)
}

func TestRegistry_Select(t *testing.T) {
	reg := NewDefaultRegistry(Options{})

	all, err := reg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(reg.Names()))

	some, err := reg.Select([]string{"TX", "texas", "OR"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "texas", some[0].Name())
	assert.Equal(t, "oregon", some[1].Name())

	_, err = reg.Select([]string{"TX", "ZZ"})
	assert.True(t, apperr.IsUnsupportedRegion(err))
}

func TestDefaultRegistry_CodesAndNames(t *testing.T) {
	reg := NewDefaultRegistry(Options{})
	want := map[string]string{
		"alabama": "AL", "california": "CA", "colorado": "CO", "florida": "FL",
		"massachusetts": "MA", "nevada": "NV", "newyork": "NY", "ohio": "OH",
		"ontario": "ON", "oregon": "OR", "texas": "TX", "vermont": "VT",
		"washington": "WA", "test": "TEST",
	}
	assert.Len(t, reg.Names(), len(want))
	for _, a := range reg.All() {
		assert.Equal(t, want[a.Name()], a.Code(), a.Name())
		assert.NotEmpty(t, a.Kind(), a.Name())
	}
}

func TestDefaultRegistry_URLOverride(t *testing.T) {
	reg := NewDefaultRegistry(Options{URLs: map[string]string{"texas": "http://localhost:9999/tx"}})
	a, err := reg.Resolve("texas")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/tx", a.(*Texas).URL)

	a, err = reg.Resolve("ohio")
	require.NoError(t, err)
	assert.Equal(t, ohioURL, a.(*Ohio).URL)
}

func TestRegistry_Search_Unsupported(t *testing.T) {
	reg := NewDefaultRegistry(Options{})
	_, err := reg.Search(context.Background(), newTestFetcher(), "ZZ", model.Filter{LastName: "smith"})
	require.Error(t, err)
	assert.True(t, apperr.IsUnsupportedRegion(err))
}

// Scenario: bulk filter over the fixture region.
func TestRegistry_Search_Fixture(t *testing.T) {
	reg := NewDefaultRegistry(Options{})
	ctx := context.Background()

	got, err := reg.Search(ctx, nil, "test", model.Filter{FirstName: "john", LastName: "smith"})
	require.NoError(t, err)
	assert.Equal(t, []string{"John Smith", "Johnny Smithers"}, names(got))
	for _, r := range got {
		assert.Equal(t, "test", r.Region)
	}

	got, err = reg.Search(ctx, nil, "TEST", model.Filter{LicenseNumber: "1002"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, names(got))

	got, err = reg.Search(ctx, nil, "test", model.Filter{LastName: "vet"})
	require.NoError(t, err)
	assert.Empty(t, got, "inactive records never match")

	got, err = reg.Search(ctx, nil, "test", model.Filter{LastName: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRegistry_Search_Idempotent(t *testing.T) {
	reg := NewDefaultRegistry(Options{})
	ctx := context.Background()
	filter := model.Filter{LastName: "Smi"}

	first, err := reg.Search(ctx, nil, "test", filter)
	require.NoError(t, err)
	second, err := reg.Search(ctx, nil, "test", filter)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Scenario: filter {John, Smith} over {John Smith, Jane Doe} yields exactly John Smith.
func TestFixture_FilterSelectsSingleRecord(t *testing.T) {
	x := &Fixture{Records: []model.VerificationResult{
		{Name: "John Smith", FirstName: "John", LastName: "Smith", Status: "Active"},
		{Name: "Jane Doe", FirstName: "Jane", LastName: "Doe", Status: "Active"},
	}}

	got, err := x.Search(context.Background(), nil, model.Filter{FirstName: "John", LastName: "Smith"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "John Smith", got[0].Name)
}
