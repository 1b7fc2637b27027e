package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adekolu/walletguard/internal/encoder"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.POST("/analyze-wallet", h.AnalyzeWallet)
	h.RegisterRoutes(r.Group("/v1"))
	return r
}

func postAnalyze(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze-wallet", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeWalletOK(t *testing.T) {
	svc := NewService(testEncoder(), fixedClassifier{score: 0.921357}, nil, nil, testLogger())
	r := newTestRouter(svc)

	w := postAnalyze(t, r, `{"wallet_address":"MULE_0","asset_id":12345}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MULE_0", resp.Address)
	assert.Equal(t, 0.9214, resp.RiskScore)
	assert.Equal(t, DecisionFraudHigh, resp.Decision)
	assert.Equal(t, uint64(12345), resp.MonitoredAsset)
}

func TestAnalyzeWalletAssetZeroIsValid(t *testing.T) {
	svc := NewService(testEncoder(), fixedClassifier{score: 0.1}, nil, nil, testLogger())
	r := newTestRouter(svc)

	w := postAnalyze(t, r, `{"wallet_address":"STU_0","asset_id":0}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(0), resp.MonitoredAsset)
}

func TestAnalyzeWalletValidation(t *testing.T) {
	svc := NewService(testEncoder(), fixedClassifier{score: 0.1}, nil, nil, testLogger())
	r := newTestRouter(svc)

	cases := map[string]string{
		"missing asset_id":       `{"wallet_address":"MULE_0"}`,
		"missing wallet_address": `{"asset_id":1}`,
		"empty body":             ``,
		"not json":               `wallet`,
	}
	for name, body := range cases {
		w := postAnalyze(t, r, body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, name)
	}
}

// Wallet identifiers are opaque lookup keys. Strings with whitespace or
// non-ASCII bytes are not malformed requests; they are either in the
// training graph or they are not.
func TestAnalyzeWalletOpaqueIdentifiers(t *testing.T) {
	svc := NewService(encoder.FromMap(map[string]int{"wallet with spaces": 0}),
		fixedClassifier{score: 0.1}, nil, nil, testLogger())
	r := newTestRouter(svc)

	w := postAnalyze(t, r, `{"wallet_address":"wallet with spaces","asset_id":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "wallet with spaces", resp.Address)

	// Leading whitespace is significant: "  MULE_0" is a different key.
	w = postAnalyze(t, r, `{"wallet_address":"  MULE_0","asset_id":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postAnalyze(t, r, `{"wallet_address":"ünïcode-wallet","asset_id":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeWalletUnknown(t *testing.T) {
	svc := NewService(testEncoder(), fixedClassifier{score: 0.1}, nil, nil, testLogger())
	r := newTestRouter(svc)

	w := postAnalyze(t, r, `{"wallet_address":"UNKNOWN_WALLET_XYZ","asset_id":1}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "wallet_not_found", resp["error"])
}

func TestAnalyzeWalletEncoderUnavailable(t *testing.T) {
	svc := NewService(nil, fixedClassifier{score: 0.1}, nil, nil, testLogger())
	r := newTestRouter(svc)

	w := postAnalyze(t, r, `{"wallet_address":"MULE_0","asset_id":1}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "model_not_ready", resp["error"])
}

func TestListAssessments(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Record(context.Background(), &Assessment{
		ID:      "asmt_a",
		Address: "MULE_0",
	}))

	svc := NewService(testEncoder(), fixedClassifier{score: 0.1}, store, nil, testLogger())
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/wallets/MULE_0/assessments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Address     string        `json:"address"`
		Assessments []*Assessment `json:"assessments"`
		Count       int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MULE_0", resp.Address)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Assessments, 1)
	assert.Equal(t, "asmt_a", resp.Assessments[0].ID)
}

func TestListAssessmentsEmpty(t *testing.T) {
	svc := NewService(testEncoder(), fixedClassifier{score: 0.1}, NewMemoryStore(), nil, testLogger())
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/wallets/STU_0/assessments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}
