package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/cache"
	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/lookup"
	"github.com/sells-group/vetverify/internal/metrics"
	"github.com/sells-group/vetverify/internal/model"
	"github.com/sells-group/vetverify/internal/monitoring"
	"github.com/sells-group/vetverify/internal/region"
)

type stubAdapter struct {
	name, code string
	results    []model.VerificationResult
	err        error
}

func (s *stubAdapter) Name() string            { return s.name }
func (s *stubAdapter) Code() string            { return s.code }
func (s *stubAdapter) Kind() region.SourceKind { return region.KindHTMLForm }

func (s *stubAdapter) Search(_ context.Context, _ fetcher.Fetcher, f model.Filter) ([]model.VerificationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []model.VerificationResult
	for _, r := range s.results {
		if region.MatchesFilter(f, r) {
			out = append(out, r)
		}
	}
	return out, nil
}

type testEnv struct {
	router http.Handler
	cache  *cache.Cache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fb, err := cache.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	c := cache.New(fb)

	reg := region.NewRegistry()
	reg.Register(&stubAdapter{name: "california", code: "CA", results: []model.VerificationResult{
		{Name: "John Smith", FirstName: "John", LastName: "Smith", LicenseNumber: "VET 123", Status: "Current, Active"},
		{Name: "Jane Doe", FirstName: "Jane", LastName: "Doe", LicenseNumber: "VET 456", Status: "Current, Active"},
	}})
	reg.Register(&stubAdapter{name: "florida", code: "FL", err: apperr.NewFetchError("florida", "https://example.test", errors.New("connection reset by peer"))})

	m := metrics.New()
	svc := lookup.NewService(reg, nil, c, lookup.WithMetrics(m))
	h := NewHandler(svc,
		WithMetrics(m),
		WithStatus(monitoring.NewCollector(reg, c, svc.Breakers(), m), 48*time.Hour),
	)
	return &testEnv{router: NewRouter(h, []string{"https://ui.example.test"}), cache: c}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := newTestEnv(t).get(t, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRegions(t *testing.T) {
	rr := newTestEnv(t).get(t, "/api/regions")
	require.Equal(t, http.StatusOK, rr.Code)

	var body []regionInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, regionInfo{Name: "california", Code: "CA", Kind: "html_form"}, body[0])
}

func TestSearch_FiltersResults(t *testing.T) {
	rr := newTestEnv(t).get(t, "/api/regions/CA/search?lastName=smi")
	require.Equal(t, http.StatusOK, rr.Code)

	var body []model.VerificationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "John Smith", body[0].Name)
}

func TestSearch_NoMatchesIsEmptyArray(t *testing.T) {
	rr := newTestEnv(t).get(t, "/api/regions/california/search?licenseNumber=999")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestSearch_UnsupportedRegion(t *testing.T) {
	rr := newTestEnv(t).get(t, "/api/regions/ZZ/search?lastName=x")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.OK)
	assert.Contains(t, body.Error, "unsupported region")
}

func TestSearch_UpstreamFailureHidesDetails(t *testing.T) {
	rr := newTestEnv(t).get(t, "/api/regions/FL/search?lastName=x")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), searchFailedMessage)
	assert.NotContains(t, rr.Body.String(), "connection reset")
}

func TestVerify_LiveThenCache(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get(t, "/api/regions/CA/verify")
	require.Equal(t, http.StatusOK, rr.Code)
	var first lookup.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	assert.True(t, first.OK)
	assert.Equal(t, lookup.SourceLive, first.Source)
	assert.Equal(t, 2, first.Count)

	rr = env.get(t, "/api/regions/CA/verify")
	var second lookup.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	assert.Equal(t, lookup.SourceCache, second.Source)
}

func TestVerify_FailureCarriesReason(t *testing.T) {
	rr := newTestEnv(t).get(t, "/api/regions/FL/verify")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body lookup.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.OK)
	assert.Contains(t, body.Error, "connection reset by peer")
}

func TestBlob(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get(t, "/api/regions/CA/blob")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := env.cache.Write(context.Background(), "california",
		model.NewRegionBlob("california", []model.VerificationResult{{Name: "John Smith"}}, ts))
	require.NoError(t, err)

	rr = env.get(t, "/api/regions/CA/blob")
	require.Equal(t, http.StatusOK, rr.Code)
	var blob model.RegionBlob
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &blob))
	assert.Equal(t, "california", blob.Region)
	assert.Equal(t, 1, blob.Count)
	assert.True(t, blob.Timestamp.Equal(ts))

	rr = env.get(t, "/api/regions/ZZ/blob")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/api/regions/CA/verify")

	rr := env.get(t, "/api/status")
	require.Equal(t, http.StatusOK, rr.Code)

	var snap monitoring.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.Len(t, snap.Regions, 2)
	assert.True(t, snap.Regions[0].Present)
	assert.Equal(t, 1, snap.Missing)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/api/regions/CA/verify")

	rr := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "vetverify_lookups_total")
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/regions", nil)
	req.Header.Set("Origin", "https://ui.example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, "https://ui.example.test", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/regions", nil)
	req.Header.Set("Origin", "https://evil.example.test")
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_Propagated(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-Id"))
}

func TestNewServer(t *testing.T) {
	srv := NewServer(":8080", http.NotFoundHandler())
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
}
