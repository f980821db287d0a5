package tushare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/finsight/internal/clientdata"
	"github.com/aristath/finsight/internal/domain"
	testingutil "github.com/aristath/finsight/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

func newServer(t *testing.T, responses map[string]string) (*httptest.Server, *[]apiRequest) {
	t.Helper()
	var seen []apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)
		body, ok := responses[req.APIName]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

const indicatorBody = `{
  "code": 0, "msg": "",
  "data": {
    "fields": ["ts_code", "ann_date", "end_date", "eps", "roe", "grossprofit_margin", "debt_to_assets", "netprofit_yoy"],
    "items": [["600519.SH", "20240403", "20231231", 59.49, 34.19, 91.96, 0, "15.38"]]
  }
}`

func TestTSCode(t *testing.T) {
	assert.Equal(t, "600519.SH", TSCode("600519"))
	assert.Equal(t, "000001.SZ", TSCode("000001"))
	assert.Equal(t, "300750.SZ", TSCode("300750"))
	assert.Equal(t, "600519.SH", TSCode("600519.sh"))
}

func TestValidatePeriod(t *testing.T) {
	for _, ok := range []string{"20231231", "20240331", "20240630", "20240930"} {
		assert.NoError(t, ValidatePeriod(ok), ok)
	}
	for _, bad := range []string{"", "2023-12-31", "20231230", "20240229", "abc"} {
		assert.ErrorIs(t, ValidatePeriod(bad), ErrInvalidPeriod, bad)
	}
}

func TestFinancialIndicators(t *testing.T) {
	srv, seen := newServer(t, map[string]string{"fina_indicator": indicatorBody})
	client := NewClient(srv.URL, "token-1", time.Second, nil, zerolog.Nop())

	result, err := client.FinancialIndicators(context.Background(), "600519", "20231231")
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, "token-1", (*seen)[0].Token)
	assert.Equal(t, "600519.SH", (*seen)[0].Params["ts_code"])
	assert.Equal(t, "20231231", (*seen)[0].Params["period"])

	assert.Equal(t, "600519.SH", result.Symbol)
	assert.ElementsMatch(t, []string{"roa", "netprofit_margin"}, result.MissingColumns)

	row := result.Latest()
	require.NotNil(t, row)
	assert.Equal(t, "20231231", row.EndDate)
	require.NotNil(t, row.Values["eps"])
	assert.Equal(t, 59.49, *row.Values["eps"])
	require.NotNil(t, row.Values["roe"])
	assert.Equal(t, 34.19, *row.Values["roe"])

	// Percent columns are rescaled, zero becomes missing
	require.NotNil(t, row.Values["grossprofit_margin"])
	assert.InDelta(t, 0.9196, *row.Values["grossprofit_margin"], 1e-9)
	assert.Nil(t, row.Values["debt_to_assets"])
	require.NotNil(t, row.Values["netprofit_yoy"])
	assert.InDelta(t, 0.1538, *row.Values["netprofit_yoy"], 1e-9)
}

func TestFinancialIndicators_Errors(t *testing.T) {
	srv, seen := newServer(t, map[string]string{
		"fina_indicator": `{"code": 40203, "msg": "no permission", "data": null}`,
	})

	client := NewClient(srv.URL, "t", time.Second, nil, zerolog.Nop())
	_, err := client.FinancialIndicators(context.Background(), "600519", "20231230")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Empty(t, *seen)

	_, err = client.FinancialIndicators(context.Background(), "600519", "20231231")
	assert.ErrorContains(t, err, "no permission")

	_, err = NewClient(srv.URL, "", time.Second, nil, zerolog.Nop()).FinancialIndicators(context.Background(), "600519", "20231231")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFinancialIndicators_Empty(t *testing.T) {
	srv, _ := newServer(t, map[string]string{
		"fina_indicator": `{"code": 0, "data": {"fields": ["ts_code"], "items": []}}`,
	})
	client := NewClient(srv.URL, "t", time.Second, nil, zerolog.Nop())

	_, err := client.FinancialIndicators(context.Background(), "600519", "20231231")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDailyBars_SortedAscending(t *testing.T) {
	srv, seen := newServer(t, map[string]string{"daily": `{
	  "code": 0,
	  "data": {
	    "fields": ["ts_code", "trade_date", "open", "high", "low", "close", "vol", "amount"],
	    "items": [
	      ["000001.SZ", "20240703", 10.2, 10.5, 10.1, 10.4, 1000, 10400],
	      ["000001.SZ", "20240701", 10.0, 10.3, 9.9, 10.1, 900, 9090],
	      ["000001.SZ", "20240702", 10.1, 10.4, 10.0, 10.2, 950, 9690]
	    ]
	  }
	}`})
	client := NewClient(srv.URL, "t", time.Second, nil, zerolog.Nop())

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
	bars, err := client.DailyBars(context.Background(), "000001", start, end)
	require.NoError(t, err)

	assert.Equal(t, "20240701", (*seen)[0].Params["start_date"])
	assert.Equal(t, "20240703", (*seen)[0].Params["end_date"])

	require.Len(t, bars, 3)
	assert.Equal(t, 10.1, bars[0].Close)
	assert.Equal(t, 10.2, bars[1].Close)
	assert.Equal(t, 10.4, bars[2].Close)
	assert.True(t, bars[0].TradeDate.Equal(start))
}

func TestFinancialIndicators_FallsBackToLastKnown(t *testing.T) {
	db, cleanup := testingutil.NewTestDB(t)
	defer cleanup()
	store := clientdata.NewRepository(db.Conn())

	responses := map[string]string{"fina_indicator": indicatorBody}
	srv, _ := newServer(t, responses)
	client := NewClient(srv.URL, "t", time.Second, store, zerolog.Nop())

	_, err := client.FinancialIndicators(context.Background(), "600519", "20231231")
	require.NoError(t, err)

	delete(responses, "fina_indicator")
	result, err := client.FinancialIndicators(context.Background(), "600519", "20231231")
	require.NoError(t, err)
	assert.Equal(t, 59.49, *result.Latest().Values["eps"])

	_, err = client.FinancialIndicators(context.Background(), "600519", "20230930")
	assert.Error(t, err)
}

const stockBasicBody = `{
  "code": 0,
  "data": {
    "fields": ["ts_code", "symbol", "name", "area", "industry", "market", "list_date"],
    "items": [
      ["600519.SH", "600519", "贵州茅台", "贵州", "白酒", "主板", "20010827"],
      ["000001.SZ", "000001", "平安银行", "深圳", "银行", "主板", "19910403"]
    ]
  }
}`

const stockCompanyBody = `{
  "code": 0,
  "data": {
    "fields": ["ts_code", "chairman", "reg_capital", "province", "city", "website", "employees", "introduction", "main_business", "business_scope"],
    "items": [["600519.SH", "张德芹", 125619.78, "贵州", "遵义市", "www.moutaichina.com", 33302, "公司简介", "茅台酒生产销售", "经营范围"]]
  }
}`

func TestStockBasics(t *testing.T) {
	srv, seen := newServer(t, map[string]string{"stock_basic": stockBasicBody})
	client := NewClient(srv.URL, "t", time.Second, nil, zerolog.Nop())

	stocks, err := client.StockBasics(context.Background(), "sse")
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, "SSE", (*seen)[0].Params["exchange"])
	assert.Equal(t, "L", (*seen)[0].Params["list_status"])
	assert.Contains(t, (*seen)[0].Fields, "industry")

	require.Len(t, stocks, 2)
	assert.Equal(t, domain.StockBasic{
		TSCode: "600519.SH", Symbol: "600519", Name: "贵州茅台", Area: "贵州",
		Industry: "白酒", Market: "主板", ListDate: "20010827",
	}, stocks[0])
}

func TestStockBasics_FallsBackToLastKnown(t *testing.T) {
	db, cleanup := testingutil.NewTestDB(t)
	defer cleanup()
	store := clientdata.NewRepository(db.Conn())

	responses := map[string]string{"stock_basic": stockBasicBody}
	srv, _ := newServer(t, responses)
	client := NewClient(srv.URL, "t", time.Second, store, zerolog.Nop())

	_, err := client.StockBasics(context.Background(), "")
	require.NoError(t, err)

	delete(responses, "stock_basic")
	stocks, err := client.StockBasics(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, stocks, 2)

	_, err = client.StockBasics(context.Background(), "SZSE")
	assert.Error(t, err)
}

func TestCompanyInfo_MergesListingAndProfile(t *testing.T) {
	srv, seen := newServer(t, map[string]string{
		"stock_basic":   stockBasicBody,
		"stock_company": stockCompanyBody,
	})
	client := NewClient(srv.URL, "t", time.Second, nil, zerolog.Nop())

	info, err := client.CompanyInfo(context.Background(), "600519")
	require.NoError(t, err)

	require.Len(t, *seen, 2)
	assert.Equal(t, "600519.SH", (*seen)[0].Params["ts_code"])
	assert.Contains(t, (*seen)[1].Fields, "main_business")

	assert.Equal(t, "600519.SH", info.TSCode)
	assert.Equal(t, "贵州茅台", info.Name)
	assert.Equal(t, "20010827", info.ListDate)
	assert.Equal(t, "白酒", info.Industry)
	assert.Equal(t, 125619.78, info.RegCapital)
	assert.Equal(t, int64(33302), info.Employees)
	assert.Equal(t, "茅台酒生产销售", info.MainBusiness)
	assert.Equal(t, "遵义市", info.City)
}

func TestCompanyInfo_PartialAndMissing(t *testing.T) {
	responses := map[string]string{"stock_company": stockCompanyBody}
	srv, _ := newServer(t, responses)
	client := NewClient(srv.URL, "t", time.Second, nil, zerolog.Nop())

	info, err := client.CompanyInfo(context.Background(), "600519")
	require.NoError(t, err)
	assert.Empty(t, info.Name)
	assert.Equal(t, "www.moutaichina.com", info.Website)

	delete(responses, "stock_company")
	_, err = client.CompanyInfo(context.Background(), "600519")
	assert.Error(t, err)
}
