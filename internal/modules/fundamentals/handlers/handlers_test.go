package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/fundamentals"
	testingutil "github.com/aristath/finsight/internal/testing"
)

func setup() (chi.Router, *testingutil.MockLLMClient) {
	eps := 1.25
	provider := testingutil.NewMockFundamentalsProvider()
	provider.SetIndicators("000001", &domain.FinancialIndicators{
		Symbol: "000001.SZ",
		Rows:   []domain.IndicatorRow{{EndDate: "20231231", Values: map[string]*float64{"eps": &eps}}},
	})
	provider.SetCompany("600519", &domain.CompanyInfo{TSCode: "600519.SH", Name: "贵州茅台", Industry: "白酒", RegCapital: 125619.78})
	llm := testingutil.NewMockLLMClient("稳健")

	r := chi.NewRouter()
	svc := fundamentals.NewService(provider, llm, domain.NewLabels("zh"), zerolog.Nop())
	NewHandler(svc, zerolog.Nop()).RegisterRoutes(r)
	return r, llm
}

func do(r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetIndicators(t *testing.T) {
	r, _ := setup()

	rec := do(r, http.MethodGet, "/fundamentals/000001?period=20231231", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data fundamentals.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "20231231", body.Data.Period)
	assert.Equal(t, "1.25", body.Data.Groups[0].Figures[0].Display)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/fundamentals/000001?period=2023", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/fundamentals/ABC?period=20231231", "").Code)
	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodGet, "/fundamentals/600000?period=20231231", "").Code)
}

func TestCommentary(t *testing.T) {
	r, llm := setup()

	rec := do(r, http.MethodPost, "/fundamentals/000001/commentary", `{"period":"20231231"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "稳健")
	assert.Contains(t, llm.LastPrompt(), "基本每股收益：1.25")

	rec = do(r, http.MethodPost, "/fundamentals/000001/commentary?period=20231231", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/fundamentals/000001/commentary", "{bad").Code)
}

func TestCompany(t *testing.T) {
	r, _ := setup()

	rec := do(r, http.MethodGet, "/fundamentals/600519/company", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data domain.CompanyInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "贵州茅台", body.Data.Name)
	assert.Equal(t, 125619.78, body.Data.RegCapital)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/fundamentals/moutai/company", "").Code)
	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodGet, "/fundamentals/000002/company", "").Code)
}
