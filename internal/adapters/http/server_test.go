package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotrace/internal/domain"
)

type fakeAnalyzer struct {
	result  domain.AnalysisResult
	err     error
	records []domain.HistoryRecord
	limit   int
	cleared bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, raw string) (domain.AnalysisResult, error) {
	if f.err != nil {
		return domain.AnalysisResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeAnalyzer) History(_ context.Context, limit int) ([]domain.HistoryRecord, error) {
	f.limit = limit
	return f.records, nil
}

func (f *fakeAnalyzer) ClearHistory(_ context.Context) error {
	f.cleared = true
	return nil
}

func newTestServer(fa *fakeAnalyzer) *httptest.Server {
	// Generous limits so only the rate limit test trips them.
	return httptest.NewServer(New(fa, 1000, 1000).Routes())
}

func sampleResult() domain.AnalysisResult {
	lat, lon := 55.7558, 37.6173
	return domain.AnalysisResult{
		Domain: "verify-account-paypal-secure.xyz",
		IP:     "198.51.100.7",
		Geo: domain.GeoAttributes{
			Country: "Russia", Region: "Moscow", City: "Moscow",
			Lat: &lat, Lon: &lon,
			ISP: "Example ISP", Org: "Example Org", ASN: "AS16276 OVH SAS",
		},
		Threat: domain.ThreatAssessment{
			Level:   domain.LevelHighRisk,
			Score:   85,
			Reasons: []string{"High-risk TLD: .xyz", "Hosted in flagged country: Russia"},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func postAnalyze(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/analyze", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestAnalyzeEndpoint(t *testing.T) {
	fa := &fakeAnalyzer{result: sampleResult()}
	srv := newTestServer(fa)
	defer srv.Close()

	resp, body := postAnalyze(t, srv.URL, `{"domain": "verify-account-paypal-secure.xyz"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "verify-account-paypal-secure.xyz", body["domain"])
	assert.Equal(t, "198.51.100.7", body["ip"])
	assert.Equal(t, "Russia", body["country"])
	assert.Equal(t, "HIGH_RISK", body["threat_level"])
	assert.Equal(t, float64(85), body["threat_score"])
	reasons, ok := body["threat_reasons"].([]any)
	require.True(t, ok)
	assert.Equal(t, "High-risk TLD: .xyz", reasons[0])
	assert.Equal(t, "AS16276 OVH SAS", body["as"])
}

func TestAnalyzeBadBody(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{})
	defer srv.Close()

	resp, body := postAnalyze(t, srv.URL, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", body["category"])
}

func TestFailureCategoryMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"validation", &domain.ValidationError{Input: "", Reason: "empty after normalization"}, http.StatusBadRequest, "validation"},
		{"resolution", &domain.ResolutionError{Domain: "nope.example"}, http.StatusBadRequest, "resolution"},
		{"geo timeout", &domain.GeoError{Kind: domain.GeoTimeout, IP: "1.2.3.4"}, http.StatusGatewayTimeout, "enrichment-timeout"},
		{"geo transport", &domain.GeoError{Kind: domain.GeoTransport, IP: "1.2.3.4"}, http.StatusBadGateway, "enrichment-transport"},
		{"geo service", &domain.GeoError{Kind: domain.GeoServiceFailure, IP: "192.168.1.1", Message: "private range"}, http.StatusBadRequest, "enrichment-failure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeAnalyzer{err: tc.err})
			defer srv.Close()

			resp, body := postAnalyze(t, srv.URL, `{"domain": "whatever.example"}`)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.category, body["category"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHistoryEndpoint(t *testing.T) {
	rec := domain.HistoryRecord{ID: 42, AnalysisResult: sampleResult()}
	fa := &fakeAnalyzer{records: []domain.HistoryRecord{rec}}
	srv := newTestServer(fa)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, fa.limit)

	var rows []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, float64(42), rows[0]["id"])
	assert.Equal(t, "HIGH_RISK", rows[0]["threat_level"])
}

func TestHistoryLimitValidation(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history?limit=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryLimitCap(t *testing.T) {
	fa := &fakeAnalyzer{}
	srv := newTestServer(fa)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history?limit=99999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, maxHistoryLimit, fa.limit)
}

func TestClearHistoryEndpoint(t *testing.T) {
	fa := &fakeAnalyzer{}
	srv := newTestServer(fa)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/history", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, fa.cleared)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	fa := &fakeAnalyzer{result: sampleResult()}
	srv := httptest.NewServer(New(fa, 1, 2).Routes())
	defer srv.Close()

	var last int
	for i := 0; i < 5; i++ {
		resp, err := http.Post(srv.URL+"/analyze", "application/json", strings.NewReader(`{"domain":"example.com"}`))
		require.NoError(t, err)
		_ = resp.Body.Close()
		last = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	// Unlimited endpoints stay reachable.
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
