package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/buyee-landed-cost/internal/engine"
	"github.com/maltedev/buyee-landed-cost/internal/models"
)

type stubExtractor struct {
	pkgs map[string]models.PackageInfo
}

func (s *stubExtractor) Extract(ctx context.Context, link string) (*models.PackageInfo, error) {
	pkg, ok := s.pkgs[link]
	if !ok {
		return nil, errors.New("status 404")
	}
	out := pkg
	return &out, nil
}

type fixedRate float64

func (r fixedRate) Rate(ctx context.Context) float64 { return float64(r) }

func newTestRouter(pkgs map[string]models.PackageInfo) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(&stubExtractor{pkgs: pkgs}, fixedRate(0.0065), logger)
	h := NewHandlers(eng, nil, nil, logger)

	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func testPackage() models.PackageInfo {
	pkg := models.PackageInfo{
		WeightKg:            1.0,
		LengthCm:            30,
		WidthCm:             20,
		HeightCm:            15,
		DomesticShippingJPY: 1200,
		ItemName:            "Dr. Martens Boots",
	}
	pkg.SetPrice(10000)
	return pkg
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCalculateEndpoint(t *testing.T) {
	link := "https://buyee.jp/item/mercari/m1"
	router := newTestRouter(map[string]models.PackageInfo{link: testPackage()})

	rec := postJSON(t, router, "/calculate", map[string]any{
		"link":                link,
		"shipping_method":     "EMS",
		"destination_address": "19 Wildwood Hts, West Sand Lake, NY",
		"destination_zip":     "12196",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CalculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "Dr. Martens Boots", resp.ItemName)
	assert.Equal(t, "EMS", resp.ShippingMethod)
	assert.Equal(t, 9450.0, resp.InternationalShippingJPY)
	assert.Equal(t, 21367.0, resp.TotalJPY)
	assert.InDelta(t, 153.64, resp.TotalUSD, 0.01)
	// No database configured, so no history id comes back.
	assert.Empty(t, resp.HistoryID)
}

func TestCalculateEndpointMissingDestination(t *testing.T) {
	router := newTestRouter(nil)

	rec := postJSON(t, router, "/calculate", map[string]any{
		"link": "https://buyee.jp/item/mercari/m1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateEndpointMissingLink(t *testing.T) {
	router := newTestRouter(nil)

	rec := postJSON(t, router, "/calculate", map[string]any{
		"destination_address": "addr",
		"destination_zip":     "12345",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateEndpointExtractionFailure(t *testing.T) {
	router := newTestRouter(nil)

	rec := postJSON(t, router, "/calculate", map[string]any{
		"link":                "https://buyee.jp/item/mercari/unknown",
		"destination_address": "addr",
		"destination_zip":     "12345",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCalculateBatchEndpoint(t *testing.T) {
	good := "https://buyee.jp/item/mercari/m1"
	bad := "https://buyee.jp/item/mercari/m2"
	router := newTestRouter(map[string]models.PackageInfo{good: testPackage()})

	rec := postJSON(t, router, "/calculate_batch", map[string]any{
		"links":               []string{good, bad},
		"shipping_method":     "EMS",
		"destination_address": "addr",
		"destination_zip":     "12345",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.False(t, resp.Consolidated)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 1, resp.SuccessCount)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.InDelta(t, 153.64, resp.TotalAll, 0.01)
}

func TestCalculateBatchConsolidatedEndpoint(t *testing.T) {
	linkA := "https://buyee.jp/item/mercari/m1"
	linkB := "https://buyee.jp/item/mercari/m2"
	router := newTestRouter(map[string]models.PackageInfo{
		linkA: testPackage(),
		linkB: testPackage(),
	})

	rec := postJSON(t, router, "/calculate_batch", map[string]any{
		"links":               []string{linkA, linkB},
		"shipping_method":     "EMS",
		"destination_address": "addr",
		"destination_zip":     "12345",
		"consolidated":        true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Consolidated)
	assert.Greater(t, resp.IndividualTotal, resp.ConsolidatedTotal)
	assert.Greater(t, resp.Savings, 0.0)
	assert.Equal(t, resp.ConsolidatedTotal, resp.TotalAll)
	assert.Equal(t, 3.25, resp.ConsolidationFeeUSD)
}

func TestHistoryEndpointWithoutDatabase(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatsEndpointWithoutDatabase(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
