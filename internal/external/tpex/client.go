package tpex

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/internal/s0_data"
	"github.com/wonny/twstrategy/pkg/httputil"
	"github.com/wonny/twstrategy/pkg/logger"
)

// Fixed row positions of the 3itrade_hedge_result payload.
// 上櫃格式固定: [0]代號 [4]外資 [7]投信 [9]自營避險 [10]自營
const (
	colCode        = 0
	colForeignNet  = 4
	colTrustNet    = 7
	colDealerHedge = 9
)

// ErrUnexpectedSchema is returned when the payload carries no known row array
var ErrUnexpectedSchema = errors.New("tpex: unexpected schema")

// Client handles communication with the Taipei Exchange (OTC market)
// ⭐ SSOT: TPEx 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new TPEx client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", "tpex"),
		baseURL:    baseURL,
	}
}

// FetchInstitutionalFlow fetches one day of OTC-market institutional flow
// ⭐ SSOT: 上櫃 三大法人 호출은 이 함수에서만
func (c *Client) FetchInstitutionalFlow(ctx context.Context, date time.Time) ([]contracts.InstitutionalFlow, error) {
	params := url.Values{}
	params.Set("l", "zh-tw")
	params.Set("o", "json")
	params.Set("se", "EW")
	params.Set("t", "D")
	params.Set("d", s0_data.ROCDate(date))

	fullURL := fmt.Sprintf("%s/web/stock/3insti/daily_trade/3itrade_hedge_result.php?%s", c.baseURL, params.Encode())
	body, err := c.httpClient.GetBytes(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch 3itrade: %w", err)
	}

	flows, err := ParseHedgeResult(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  s0_data.ROCDate(date),
		"count": len(flows),
	}).Debug("Fetched OTC institutional flow")

	return flows, nil
}

// ParseHedgeResult parses the positional row array. The legacy payload keeps rows
// under "aaData"; the newer one under "tables[0].data".
func ParseHedgeResult(body []byte) ([]contracts.InstitutionalFlow, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnexpectedSchema)
	}

	rows := gjson.GetBytes(body, "aaData")
	if !rows.IsArray() {
		rows = gjson.GetBytes(body, "tables.0.data")
	}
	if !rows.IsArray() {
		return nil, ErrUnexpectedSchema
	}

	flows := make([]contracts.InstitutionalFlow, 0, len(rows.Array()))
	for _, row := range rows.Array() {
		cells := row.Array()
		if len(cells) <= colCode {
			continue
		}

		code := strings.TrimSpace(cells[colCode].String())
		if code == "" {
			continue
		}

		flows = append(flows, contracts.InstitutionalFlow{
			Code:           code,
			ForeignNet:     cellLots(cells, colForeignNet),
			TrustNet:       cellLots(cells, colTrustNet),
			DealerHedgeNet: cellLots(cells, colDealerHedge),
			Market:         contracts.MarketOTC,
		})
	}

	return flows, nil
}

func cellLots(cells []gjson.Result, idx int) int64 {
	if idx >= len(cells) {
		return 0
	}
	return s0_data.ToLots(cells[idx].String())
}
