package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/pkg/httputil"
	"github.com/wonny/twstrategy/pkg/logger"
)

// ErrNoData is returned for unknown tickers and empty histories
var ErrNoData = errors.New("yahoo: no data")

// Client fetches daily price history from the Yahoo Finance chart API
// ⭐ SSOT: 가격 히스토리 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	lookback   string
}

// NewClient creates a new Yahoo Finance client. lookback is a chart range such as "1y".
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, lookback string) *Client {
	if lookback == "" {
		lookback = "1y"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", "yahoo"),
		baseURL:    baseURL,
		lookback:   lookback,
	}
}

// Symbol builds the ticker for a Taiwan security: 2330.TW, 6488.TWO
func Symbol(code string, market contracts.Market) string {
	return code + market.YahooSuffix()
}

// FetchHistory fetches daily bars for a security, oldest first
func (c *Client) FetchHistory(ctx context.Context, code string, market contracts.Market) ([]contracts.PriceBar, error) {
	symbol := Symbol(code, market)

	params := url.Values{}
	params.Set("range", c.lookback)
	params.Set("interval", "1d")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())
	body, err := c.httpClient.GetBytes(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}

	bars, err := ParseChart(body)
	if err != nil {
		return nil, fmt.Errorf("parse chart %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched price history")

	return bars, nil
}

// ParseChart parses a v8 chart response. Sessions without a close are skipped.
func ParseChart(body []byte) ([]contracts.PriceBar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON")
	}

	root := gjson.ParseBytes(body)
	if chartErr := root.Get("chart.error"); chartErr.Exists() && chartErr.Type != gjson.Null {
		return nil, fmt.Errorf("%w: %s", ErrNoData, chartErr.Get("description").String())
	}

	result := root.Get("chart.result.0")
	if !result.Exists() {
		return nil, ErrNoData
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]contracts.PriceBar, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}

		bars = append(bars, contracts.PriceBar{
			Date:   time.Unix(ts.Int(), 0).UTC(),
			Open:   floatAt(opens, i),
			High:   floatAt(highs, i),
			Low:    floatAt(lows, i),
			Close:  closes[i].Float(),
			Volume: floatAtInt(volumes, i),
		})
	}

	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

func floatAt(values []gjson.Result, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return values[i].Float()
}

func floatAtInt(values []gjson.Result, i int) int64 {
	if i >= len(values) {
		return 0
	}
	return values[i].Int()
}
