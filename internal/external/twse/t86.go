package twse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/internal/s0_data"
)

// ColumnSpec declares how to locate one column of the T86 payload.
// Resolution order: exact Header, then the first field containing every Keyword,
// then the positional Fallback (-1 for none).
type ColumnSpec struct {
	Header   string
	Keywords []string
	Fallback int
}

// T86Schema is the declared column layout of the listed-market flow feed
type T86Schema struct {
	Foreign     ColumnSpec
	Trust       ColumnSpec
	DealerHedge ColumnSpec
}

// DefaultT86Schema matches the headers published by TWSE since 2018.
// DealerHedge reads the hedge book only; it approximates dealer activity rather
// than summing the proprietary and hedge books.
var DefaultT86Schema = T86Schema{
	Foreign: ColumnSpec{
		Header:   "外陸資買賣超股數(不含外資自營商)",
		Keywords: []string{"外陸資買賣超"},
		Fallback: 4,
	},
	Trust: ColumnSpec{
		Header:   "投信買賣超股數",
		Keywords: []string{"投信買賣超"},
		Fallback: 10,
	},
	DealerHedge: ColumnSpec{
		Header:   "自營商買賣超股數(避險)",
		Keywords: []string{"買賣超", "避險"},
		Fallback: -1,
	},
}

// T86Columns are the resolved column positions; DealerHedge is -1 when absent
type T86Columns struct {
	Foreign     int
	Trust       int
	DealerHedge int
	Exact       bool // every column resolved by its declared header
}

// Resolve locates the columns in a field-name list
func (s T86Schema) Resolve(fields []string) T86Columns {
	foreign, fExact := s.Foreign.resolve(fields)
	trust, tExact := s.Trust.resolve(fields)
	hedge, hExact := s.DealerHedge.resolve(fields)

	return T86Columns{
		Foreign:     foreign,
		Trust:       trust,
		DealerHedge: hedge,
		Exact:       fExact && tExact && hExact,
	}
}

func (c ColumnSpec) resolve(fields []string) (int, bool) {
	for i, f := range fields {
		if strings.TrimSpace(f) == c.Header {
			return i, true
		}
	}

	for i, f := range fields {
		if containsAll(f, c.Keywords) {
			return i, false
		}
	}

	return c.Fallback, false
}

func containsAll(s string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}

// FetchInstitutionalFlow fetches one day of listed-market institutional flow (T86)
// ⭐ SSOT: 上市 三大法人 호출은 이 함수에서만
func (c *Client) FetchInstitutionalFlow(ctx context.Context, date time.Time) ([]contracts.InstitutionalFlow, error) {
	url := fmt.Sprintf("%s/rwd/zh/fund/T86?date=%s&selectType=ALLBUT0999&response=json",
		c.baseURL, s0_data.GregorianDate(date))

	body, err := c.httpClient.GetBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch T86: %w", err)
	}

	flows, cols, err := ParseT86(body, DefaultT86Schema)
	if err != nil {
		return nil, err
	}

	log := c.logger.WithFields(map[string]interface{}{
		"date":  s0_data.GregorianDate(date),
		"count": len(flows),
	})
	if !cols.Exact {
		log.WithFields(map[string]interface{}{
			"foreign_col": cols.Foreign,
			"trust_col":   cols.Trust,
			"hedge_col":   cols.DealerHedge,
		}).Warn("T86 headers drifted from declared schema, using fallback columns")
	}
	log.Debug("Fetched listed institutional flow")

	return flows, nil
}

// ParseT86 parses a T86 JSON payload into lot-denominated flows
func ParseT86(body []byte, schema T86Schema) ([]contracts.InstitutionalFlow, T86Columns, error) {
	if !gjson.ValidBytes(body) {
		return nil, T86Columns{}, fmt.Errorf("T86: invalid JSON")
	}

	root := gjson.ParseBytes(body)
	if stat := root.Get("stat").String(); stat != "OK" {
		return nil, T86Columns{}, fmt.Errorf("%w: stat=%q", ErrNotReady, stat)
	}

	fieldValues := root.Get("fields").Array()
	fields := make([]string, 0, len(fieldValues))
	for _, f := range fieldValues {
		fields = append(fields, f.String())
	}
	cols := schema.Resolve(fields)

	rows := root.Get("data")
	if !rows.IsArray() {
		return nil, cols, fmt.Errorf("T86: missing data array")
	}

	flows := make([]contracts.InstitutionalFlow, 0, len(rows.Array()))
	for _, row := range rows.Array() {
		cells := row.Array()
		if len(cells) == 0 {
			continue
		}

		code := strings.TrimSpace(cells[0].String())
		if code == "" {
			continue
		}

		flows = append(flows, contracts.InstitutionalFlow{
			Code:           code,
			ForeignNet:     cellLots(cells, cols.Foreign),
			TrustNet:       cellLots(cells, cols.Trust),
			DealerHedgeNet: cellLots(cells, cols.DealerHedge),
			Market:         contracts.MarketListed,
		})
	}

	return flows, cols, nil
}

// cellLots converts a cell to lots; a missing column or short row yields 0
func cellLots(cells []gjson.Result, idx int) int64 {
	if idx < 0 || idx >= len(cells) {
		return 0
	}
	return s0_data.ToLots(cells[idx].String())
}
