// Package sina fetches A-share quotes and index levels from the Sina Finance
// quote endpoint.
package sina

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/finsight/internal/clientdata"
	"github.com/aristath/finsight/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ErrUnsupportedSymbol is returned for symbols outside the Shanghai/Shenzhen ranges
var ErrUnsupportedSymbol = errors.New("unsupported symbol format")

// indexNames maps well-known index codes to their display names
var indexNames = map[string]string{
	"sh000001": "上证指数",
	"sz399001": "深证成指",
	"sz399006": "创业板指",
	"sh000300": "沪深300",
}

// Client for the Sina quote endpoint
type Client struct {
	baseURL string
	referer string
	client  *http.Client
	store   *clientdata.Repository
	log     zerolog.Logger
	now     func() time.Time
}

// NewClient creates a new Sina client.
// store is optional - if nil, no last-known fallback is kept.
func NewClient(baseURL, referer string, timeout time.Duration, store *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		referer: referer,
		client:  &http.Client{Timeout: timeout},
		store:   store,
		log:     log.With().Str("client", "sina").Logger(),
		now:     time.Now,
	}
}

// Code converts a six-digit A-share symbol to Sina's exchange-prefixed form
func Code(symbol string) (string, error) {
	switch {
	case strings.HasPrefix(symbol, "6"):
		return "sh" + symbol, nil
	case strings.HasPrefix(symbol, "0"), strings.HasPrefix(symbol, "3"):
		return "sz" + symbol, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}
}

// Quote returns the latest quote for a six-digit symbol
func (c *Client) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	code, err := Code(symbol)
	if err != nil {
		return nil, err
	}

	q, err := c.fetch(ctx, clientdata.TableQuotes, code, clientdata.TTLQuote)
	if err != nil {
		return nil, err
	}
	q.Symbol = symbol
	return q, nil
}

// Index returns the latest level of an exchange-prefixed index code
func (c *Client) Index(ctx context.Context, code string) (*domain.Quote, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !strings.HasPrefix(code, "sh") && !strings.HasPrefix(code, "sz") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, code)
	}

	q, err := c.fetch(ctx, clientdata.TableIndices, code, clientdata.TTLIndex)
	if err != nil {
		return nil, err
	}
	q.Symbol = code
	if name, ok := indexNames[code]; ok {
		q.Name = name
	}
	return q, nil
}

// fetch queries upstream and falls back to the last stored quote on failure
func (c *Client) fetch(ctx context.Context, table, code string, ttl time.Duration) (*domain.Quote, error) {
	q, err := c.request(ctx, code)
	if err != nil {
		if stale, ok := c.lastKnown(table, code); ok {
			c.log.Warn().
				Err(err).
				Str("code", code).
				Time("fetched_at", stale.FetchedAt).
				Msg("Quote request failed, using last known quote")
			return stale, nil
		}
		return nil, err
	}

	if c.store != nil {
		if err := c.store.Store(table, code, q, ttl); err != nil {
			c.log.Warn().Err(err).Str("code", code).Msg("Failed to store quote")
		}
	}

	c.log.Debug().
		Str("code", code).
		Float64("current", q.Current).
		Msg("Fetched quote")

	return q, nil
}

func (c *Client) lastKnown(table, code string) (*domain.Quote, bool) {
	if c.store == nil {
		return nil, false
	}
	var q domain.Quote
	if !c.store.Lookup(table, code, false, &q) {
		return nil, false
	}
	return &q, true
}

func (c *Client) request(ctx context.Context, code string) (*domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+code, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Referer", c.referer)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	q, err := parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", code, err)
	}
	q.FetchedAt = c.now().UTC()
	return q, nil
}

// parse reads one `var hq_str_xxx="name,open,prev_close,current,high,low,...";` line
func parse(payload string) (*domain.Quote, error) {
	_, raw, found := strings.Cut(payload, `="`)
	if !found {
		return nil, fmt.Errorf("malformed quote payload")
	}
	raw, _, _ = strings.Cut(raw, `"`)

	fields := strings.Split(raw, ",")
	if len(fields) < 10 || fields[0] == "" {
		return nil, fmt.Errorf("empty quote payload")
	}

	nums := make([]float64, 10)
	for i := 1; i < 10; i++ {
		if i == 6 || i == 7 {
			continue // bid/ask
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quote field %d: %w", i, err)
		}
		nums[i] = v
	}

	q := &domain.Quote{
		Name:      fields[0],
		Open:      nums[1],
		PrevClose: nums[2],
		Current:   nums[3],
		High:      nums[4],
		Low:       nums[5],
		Volume:    nums[8],
		Amount:    nums[9],
	}
	q.Change = q.Current - q.PrevClose
	if q.PrevClose != 0 {
		q.ChangePercent = q.Change / q.PrevClose * 100
	}
	return q, nil
}
