// Package tushare fetches listings, company profiles, financial indicators
// and daily price history from the Tushare Pro HTTP API.
package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aristath/finsight/internal/clientdata"
	"github.com/aristath/finsight/internal/domain"
	"github.com/rs/zerolog"
)

const dateLayout = "20060102"

// RequiredColumns are the indicator columns downstream analysis relies on
var RequiredColumns = []string{"eps", "roe", "roa", "grossprofit_margin", "netprofit_margin"}

// percentMarkers identify columns reported in percent that are rescaled to fractions
var percentMarkers = []string{"ratio", "rate", "growth", "margin", "yoy", "qoq"}

// Errors returned by the client
var (
	ErrInvalidPeriod = errors.New("period must be a quarter-end date in YYYYMMDD form")
	ErrNoData        = errors.New("no data returned")
	ErrNoToken       = errors.New("tushare token not configured")
)

// Client for the Tushare Pro API
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	store   *clientdata.Repository
	log     zerolog.Logger
}

// NewClient creates a new Tushare client.
// store is optional - if nil, no last-known fallback is kept.
func NewClient(baseURL, token string, timeout time.Duration, store *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		store:   store,
		log:     log.With().Str("client", "tushare").Logger(),
	}
}

// TSCode normalises a symbol to Tushare's ts_code form (600519 -> 600519.SH)
func TSCode(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(symbol, ".SH") || strings.HasSuffix(symbol, ".SZ") {
		return symbol
	}
	if strings.HasPrefix(symbol, "6") {
		return symbol + ".SH"
	}
	return symbol + ".SZ"
}

// ValidatePeriod checks that period is a quarter-end date (MMDD of 0331, 0630, 0930 or 1231)
func ValidatePeriod(period string) error {
	t, err := time.Parse(dateLayout, period)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	switch t.Format("0102") {
	case "0331", "0630", "0930", "1231":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
}

// Column lists for the listing endpoints
const (
	stockBasicFields   = "ts_code,symbol,name,area,industry,market,list_date"
	stockCompanyFields = "ts_code,chairman,reg_capital,province,city,website,employees,introduction,main_business,business_scope"
)

// table is the fields/items payload every Tushare endpoint returns
type table struct {
	Fields []string
	Items  [][]interface{}
}

// rows returns each item keyed by field name
func (t *table) rows() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(t.Items))
	for _, item := range t.Items {
		row := make(map[string]interface{}, len(t.Fields))
		for i, field := range t.Fields {
			if i < len(item) {
				row[field] = item[i]
			}
		}
		out = append(out, row)
	}
	return out
}

// FinancialIndicators returns the fina_indicator table for one reporting period
func (c *Client) FinancialIndicators(ctx context.Context, symbol, period string) (*domain.FinancialIndicators, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	tsCode := TSCode(symbol)
	key := tsCode + ":" + period

	t, err := c.call(ctx, "fina_indicator", map[string]string{"ts_code": tsCode, "period": period}, "")
	if err != nil {
		var stale domain.FinancialIndicators
		if c.store != nil && c.store.Lookup(clientdata.TableIndicators, key, false, &stale) {
			c.log.Warn().Err(err).Str("ts_code", tsCode).Msg("Indicator request failed, using last known table")
			return &stale, nil
		}
		return nil, err
	}

	result := indicatorsFrom(t)
	result.Symbol = tsCode
	result.Period = period
	if len(result.MissingColumns) > 0 {
		c.log.Warn().
			Str("ts_code", tsCode).
			Strs("missing", result.MissingColumns).
			Msg("Financial indicators lack required columns")
	}

	c.remember(clientdata.TableIndicators, key, result, clientdata.TTLIndicators)
	c.log.Info().Str("ts_code", tsCode).Int("rows", len(result.Rows)).Msg("Fetched financial indicators")
	return result, nil
}

// DailyBars returns daily bars between start and end, oldest first
func (c *Client) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.DailyBar, error) {
	tsCode := TSCode(symbol)
	params := map[string]string{
		"ts_code":    tsCode,
		"start_date": start.Format(dateLayout),
		"end_date":   end.Format(dateLayout),
	}
	key := tsCode + ":" + params["start_date"] + ":" + params["end_date"]

	t, err := c.call(ctx, "daily", params, "")
	if err != nil {
		var stale []domain.DailyBar
		if c.store != nil && c.store.Lookup(clientdata.TableDailyBars, key, false, &stale) {
			c.log.Warn().Err(err).Str("ts_code", tsCode).Msg("Daily bar request failed, using last known bars")
			return stale, nil
		}
		return nil, err
	}

	bars, err := barsFrom(t)
	if err != nil {
		return nil, err
	}

	c.remember(clientdata.TableDailyBars, key, bars, clientdata.TTLDailyBars)
	return bars, nil
}

// StockBasics returns the listed securities of exchange (SSE or SZSE), or of
// both when exchange is empty
func (c *Client) StockBasics(ctx context.Context, exchange string) ([]domain.StockBasic, error) {
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	key := "all"
	if exchange != "" {
		key = exchange
	}

	t, err := c.call(ctx, "stock_basic", map[string]string{"exchange": exchange, "list_status": "L"}, stockBasicFields)
	if err != nil {
		var stale []domain.StockBasic
		if c.store != nil && c.store.Lookup(clientdata.TableStocks, key, false, &stale) {
			c.log.Warn().Err(err).Str("exchange", key).Msg("Stock list request failed, using last known list")
			return stale, nil
		}
		return nil, err
	}

	stocks := make([]domain.StockBasic, 0, len(t.Items))
	for _, row := range t.rows() {
		stocks = append(stocks, stockBasicFrom(row))
	}

	c.remember(clientdata.TableStocks, key, stocks, clientdata.TTLStockList)
	c.log.Info().Str("exchange", key).Int("stocks", len(stocks)).Msg("Fetched stock list")
	return stocks, nil
}

// CompanyInfo merges the stock_basic row and the stock_company profile of
// symbol. Either half may be missing; the call fails only when both do.
func (c *Client) CompanyInfo(ctx context.Context, symbol string) (*domain.CompanyInfo, error) {
	tsCode := TSCode(symbol)
	info := &domain.CompanyInfo{TSCode: tsCode}

	basic, basicErr := c.call(ctx, "stock_basic", map[string]string{"ts_code": tsCode}, stockBasicFields)
	if basicErr == nil {
		b := stockBasicFrom(basic.rows()[0])
		info.Name = b.Name
		info.ListDate = b.ListDate
		info.Industry = b.Industry
	}

	company, companyErr := c.call(ctx, "stock_company", map[string]string{"ts_code": tsCode}, stockCompanyFields)
	if companyErr == nil {
		row := company.rows()[0]
		info.RegCapital, _ = numeric(row["reg_capital"])
		employees, _ := numeric(row["employees"])
		info.Employees = int64(employees)
		info.Chairman = text(row["chairman"])
		info.Introduction = text(row["introduction"])
		info.MainBusiness = text(row["main_business"])
		info.BusinessScope = text(row["business_scope"])
		info.Province = text(row["province"])
		info.City = text(row["city"])
		info.Website = text(row["website"])
	}

	if basicErr != nil && companyErr != nil {
		var stale domain.CompanyInfo
		if c.store != nil && c.store.Lookup(clientdata.TableCompanies, tsCode, false, &stale) {
			c.log.Warn().Err(basicErr).Str("ts_code", tsCode).Msg("Company request failed, using last known profile")
			return &stale, nil
		}
		return nil, basicErr
	}
	if basicErr != nil || companyErr != nil {
		c.log.Warn().
			AnErr("basic_error", basicErr).
			AnErr("company_error", companyErr).
			Str("ts_code", tsCode).
			Msg("Company profile is partial")
	}

	c.remember(clientdata.TableCompanies, tsCode, info, clientdata.TTLCompany)
	return info, nil
}

func (c *Client) remember(table, key string, v interface{}, ttl time.Duration) {
	if c.store == nil {
		return
	}
	if err := c.store.Store(table, key, v, ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to store response")
	}
}

// call posts one API request and extracts the fields/items table. An empty
// fields list asks for the endpoint's default columns.
func (c *Client) call(ctx context.Context, api string, params map[string]string, fields string) (*table, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	payload, err := json.Marshal(map[string]interface{}{
		"api_name": api,
		"token":    c.token,
		"params":   params,
		"fields":   fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", api, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", api, resp.StatusCode)
	}

	var doc interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", api, err)
	}

	if code, err := jsonpath.Get("$.code", doc); err == nil {
		if n, ok := code.(float64); ok && n != 0 {
			msg, _ := jsonpath.Get("$.msg", doc)
			return nil, fmt.Errorf("%s failed with code %.0f: %v", api, n, msg)
		}
	}

	rawFields, err := jsonpath.Get("$.data.fields", doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", api, ErrNoData)
	}
	rawItems, err := jsonpath.Get("$.data.items", doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", api, ErrNoData)
	}

	t := &table{}
	fieldList, _ := rawFields.([]interface{})
	for _, f := range fieldList {
		name, _ := f.(string)
		t.Fields = append(t.Fields, name)
	}
	itemList, _ := rawItems.([]interface{})
	for _, it := range itemList {
		row, ok := it.([]interface{})
		if !ok {
			continue
		}
		t.Items = append(t.Items, row)
	}
	if len(t.Items) == 0 {
		return nil, fmt.Errorf("%s: %w", api, ErrNoData)
	}
	return t, nil
}

func isPercentColumn(name string) bool {
	for _, marker := range percentMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// numeric converts a cell to a float; strings are parsed, anything else is missing
func numeric(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func text(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func stockBasicFrom(row map[string]interface{}) domain.StockBasic {
	return domain.StockBasic{
		TSCode:   text(row["ts_code"]),
		Symbol:   text(row["symbol"]),
		Name:     text(row["name"]),
		Area:     text(row["area"]),
		Industry: text(row["industry"]),
		Market:   text(row["market"]),
		ListDate: text(row["list_date"]),
	}
}

func indicatorsFrom(t *table) *domain.FinancialIndicators {
	result := &domain.FinancialIndicators{Columns: t.Fields}

	present := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		present[f] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			result.MissingColumns = append(result.MissingColumns, col)
		}
	}

	for _, item := range t.Items {
		row := domain.IndicatorRow{Values: make(map[string]*float64)}
		for i, field := range t.Fields {
			if i >= len(item) {
				break
			}
			switch field {
			case "ts_code":
				row.TSCode = text(item[i])
				continue
			case "ann_date":
				row.AnnDate = text(item[i])
				continue
			case "end_date":
				row.EndDate = text(item[i])
				continue
			}

			v, ok := numeric(item[i])
			if ok && isPercentColumn(field) {
				v /= 100
			}
			if !ok || v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
				row.Values[field] = nil
				continue
			}
			value := v
			row.Values[field] = &value
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

func barsFrom(t *table) ([]domain.DailyBar, error) {
	index := make(map[string]int, len(t.Fields))
	for i, f := range t.Fields {
		index[f] = i
	}
	if _, ok := index["trade_date"]; !ok {
		return nil, fmt.Errorf("daily response lacks trade_date")
	}

	cell := func(item []interface{}, field string) float64 {
		i, ok := index[field]
		if !ok || i >= len(item) {
			return 0
		}
		v, _ := numeric(item[i])
		return v
	}

	bars := make([]domain.DailyBar, 0, len(t.Items))
	for _, item := range t.Items {
		date, err := time.Parse(dateLayout, text(item[index["trade_date"]]))
		if err != nil {
			continue
		}
		bars = append(bars, domain.DailyBar{
			TradeDate: date,
			Open:      cell(item, "open"),
			High:      cell(item, "high"),
			Low:       cell(item, "low"),
			Close:     cell(item, "close"),
			Volume:    cell(item, "vol"),
			Amount:    cell(item, "amount"),
		})
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].TradeDate.Before(bars[j].TradeDate)
	})
	return bars, nil
}
