package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drugsafe/dilictl/pkg/score"
)

func testStore() *score.Store {
	return score.NewStore([]score.Record{
		{Symbol: "CYP3A4", DrugCount: 3, TotalDILIWeight: 5, RiskScore: 1.0, Category: score.CategoryHigh},
		{Symbol: "CYP2D6", DrugCount: 2, TotalDILIWeight: 2, RiskScore: 0.5, Category: score.CategoryMedium},
		{Symbol: "PTGS2", DrugCount: 1, TotalDILIWeight: 1, RiskScore: 0.2, Category: score.CategoryLow},
	})
}

func doRequest(t *testing.T, store *score.Store, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	makeRouter(store, 30).ServeHTTP(rec, req)
	return rec
}

func TestTargetAPIHandler(t *testing.T) {
	rec := doRequest(t, testStore(), "/data/target?s=cyp3a4")
	require.Equal(t, http.StatusOK, rec.Code)

	var got score.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "CYP3A4", got.Symbol)
	assert.Equal(t, score.CategoryHigh, got.Category)

	rec = doRequest(t, testStore(), "/data/target?s=NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, testStore(), "/data/target")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestAPIHandler(t *testing.T) {
	rec := doRequest(t, testStore(), "/data/suggest?q=cyp")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []score.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "CYP3A4", got[0].Symbol)
	assert.Equal(t, "CYP2D6", got[1].Symbol)

	// empty query suggests nothing
	rec = doRequest(t, testStore(), "/data/suggest?q=")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got)
}

func TestTargetListAPIHandler(t *testing.T) {
	rec := doRequest(t, testStore(), "/data/targets")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []score.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 3)
}

func TestThresholdsAPIHandler(t *testing.T) {
	rec := doRequest(t, testStore(), "/data/thresholds")
	require.Equal(t, http.StatusOK, rec.Code)

	var th score.Thresholds
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &th))
	assert.LessOrEqual(t, th.Low, th.Medium)

	// no scores loaded
	rec = doRequest(t, score.NewStore(nil), "/data/thresholds")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistogramAPIHandler(t *testing.T) {
	rec := doRequest(t, testStore(), "/data/histogram?bins=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var bins []score.Bin
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bins))
	require.Len(t, bins, 10)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 3, total)

	// default bin count from router config
	rec = doRequest(t, testStore(), "/data/histogram")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bins))
	assert.Len(t, bins, 30)
}

func TestSummaryAPIHandler(t *testing.T) {
	rec := doRequest(t, testStore(), "/data/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary ScoreSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.Targets)
	assert.Equal(t, 1.0, summary.MaxScore)
	assert.Equal(t, 1, summary.Categories[score.CategoryHigh])
	assert.Equal(t, 1, summary.Categories[score.CategoryMedium])
	assert.Equal(t, 1, summary.Categories[score.CategoryLow])
}

func TestQueryParamInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?bins=12&bad=zz", nil)
	assert.Equal(t, 12, queryParamInt(req, "bins", 30))
	assert.Equal(t, 30, queryParamInt(req, "bad", 30))
	assert.Equal(t, 30, queryParamInt(req, "missing", 30))
}
