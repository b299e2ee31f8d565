package twse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"github.com/wonny/twstrategy/internal/contracts"
)

// ideographicSpace separates code and name in the first column: "2330　台積電"
const ideographicSpace = "　"

// isinModes maps a market to the strMode parameter of the ISIN listing page
var isinModes = map[contracts.Market]int{
	contracts.MarketListed: 2,
	contracts.MarketOTC:    4,
}

// FetchListing fetches the security directory page for one market
// ⭐ SSOT: 證券編碼公告 호출은 이 함수에서만
func (c *Client) FetchListing(ctx context.Context, market contracts.Market) ([]contracts.SecurityRecord, error) {
	mode, ok := isinModes[market]
	if !ok {
		return nil, fmt.Errorf("unknown market: %s", market)
	}

	url := fmt.Sprintf("%s/isin/C_public.jsp?strMode=%d", c.isinBaseURL, mode)
	body, err := c.httpClient.GetBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", market, err)
	}

	// The ISIN pages are served in Big5
	records, err := ParseListing(transform.NewReader(bytes.NewReader(body), traditionalchinese.Big5.NewDecoder()), market)
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", market, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"market": market,
		"count":  len(records),
	}).Debug("Fetched security listing")

	return records, nil
}

// ParseListing extracts 4-digit securities from a UTF-8 listing page
func ParseListing(r io.Reader, market contracts.Market) ([]contracts.SecurityRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	records := make([]contracts.SecurityRecord, 0)
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		// Header row
		if i == 0 {
			return
		}

		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return
		}

		code, name, ok := splitCodeName(cell.Text())
		if !ok {
			return
		}

		records = append(records, contracts.SecurityRecord{
			Code:   code,
			Name:   name,
			Market: market,
		})
	})

	return records, nil
}

// splitCodeName splits "2330　台積電" and keeps only 4-digit ASCII codes
func splitCodeName(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	code, name, found := strings.Cut(text, ideographicSpace)
	if !found {
		return "", "", false
	}

	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if !isFourDigitCode(code) {
		return "", "", false
	}
	return code, name, true
}

func isFourDigitCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
