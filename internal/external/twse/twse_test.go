package twse

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/pkg/config"
	"github.com/wonny/twstrategy/pkg/httputil"
	"github.com/wonny/twstrategy/pkg/logger"
)

const listingHTML = `
<html><body>
<table class="h4">
	<tr><td>有價證券代號及名稱</td><td>國際證券辨識號碼(ISIN Code)</td></tr>
	<tr><td colspan="7"><B>股票</B></td></tr>
	<tr><td>1101　台泥</td><td>TW0001101004</td></tr>
	<tr><td>2330　台積電</td><td>TW0002330008</td></tr>
	<tr><td>0050　元大台灣50</td><td>TW0000050004</td></tr>
	<tr><td>01001T　土銀富邦R1</td><td>TW00001001T1</td></tr>
	<tr><td>033412　台積電凱基42購01</td><td>TW18Z0334120</td></tr>
	<tr><td>2330 no full-width space</td><td></td></tr>
</table>
</body></html>`

var t86Fields = []string{
	"證券代號", "證券名稱",
	"外陸資買進股數(不含外資自營商)", "外陸資賣出股數(不含外資自營商)", "外陸資買賣超股數(不含外資自營商)",
	"外資自營商買進股數", "外資自營商賣出股數", "外資自營商買賣超股數",
	"投信買進股數", "投信賣出股數", "投信買賣超股數",
	"自營商買賣超股數",
	"自營商買進股數(自行買賣)", "自營商賣出股數(自行買賣)", "自營商買賣超股數(自行買賣)",
	"自營商買進股數(避險)", "自營商賣出股數(避險)", "自營商買賣超股數(避險)",
	"三大法人買賣超股數",
}

func t86Row(code, foreign, trust, hedge string) []string {
	row := make([]string, len(t86Fields))
	for i := range row {
		row[i] = "0"
	}
	row[0] = code
	row[1] = "name"
	row[4] = foreign
	row[10] = trust
	row[15] = "999,999,999" // hedge buy column must not be picked
	row[17] = hedge
	return row
}

func t86Payload(t *testing.T, stat string, fields []string, rows ...[]string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"stat":   stat,
		"date":   "20240503",
		"fields": fields,
		"data":   rows,
	})
	require.NoError(t, err)
	return body
}

func newTestClient(server *httptest.Server) *Client {
	cfg := &config.Config{HTTP: config.HTTPConfig{Timeout: 5 * time.Second}}
	httpClient := httputil.New(cfg, logger.Nop()).DisableRetry()
	return NewClient(httpClient, logger.Nop(), server.URL, server.URL)
}

func TestParseListing(t *testing.T) {
	records, err := ParseListing(strings.NewReader(listingHTML), contracts.MarketListed)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, contracts.SecurityRecord{Code: "1101", Name: "台泥", Market: contracts.MarketListed}, records[0])
	assert.Equal(t, "2330", records[1].Code)
	assert.Equal(t, "台積電", records[1].Name)
	assert.Equal(t, "0050", records[2].Code, "ETFs stay in the directory; the scanner excludes them")
}

func TestSplitCodeName(t *testing.T) {
	tests := []struct {
		input    string
		wantCode string
		wantOK   bool
	}{
		{"2330　台積電", "2330", true},
		{" 6488　環球晶 ", "6488", true},
		{"01001T　土銀富邦R1", "", false},
		{"23A0　name", "", false},
		{"２３３０　全形", "", false},
		{"股票", "", false},
	}

	for _, tt := range tests {
		code, _, ok := splitCodeName(tt.input)
		assert.Equal(t, tt.wantOK, ok, tt.input)
		assert.Equal(t, tt.wantCode, code, tt.input)
	}
}

func TestFetchListing_DecodesBig5(t *testing.T) {
	encoded, err := traditionalchinese.Big5.NewEncoder().String(listingHTML)
	require.NoError(t, err)

	var gotMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMode = r.URL.Query().Get("strMode")
		w.Header().Set("Content-Type", "text/html; charset=big5")
		w.Write([]byte(encoded))
	}))
	defer server.Close()

	records, err := newTestClient(server).FetchListing(context.Background(), contracts.MarketOTC)
	require.NoError(t, err)

	assert.Equal(t, "4", gotMode)
	require.Len(t, records, 3)
	assert.Equal(t, "台積電", records[1].Name)
	assert.Equal(t, contracts.MarketOTC, records[1].Market)
}

func TestFetchListing_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchListing(context.Background(), contracts.MarketListed)
	assert.Error(t, err)
}

func TestT86Schema_ResolveExact(t *testing.T) {
	cols := DefaultT86Schema.Resolve(t86Fields)

	assert.Equal(t, 4, cols.Foreign)
	assert.Equal(t, 10, cols.Trust)
	assert.Equal(t, 17, cols.DealerHedge)
	assert.True(t, cols.Exact)
}

func TestT86Schema_ResolveKeywordFallback(t *testing.T) {
	fields := []string{"代號", "名稱", "外陸資買賣超股數", "投信買賣超股數(含)", "自營商買進股數(避險)", "自營商買賣超(避險)"}
	cols := DefaultT86Schema.Resolve(fields)

	assert.Equal(t, 2, cols.Foreign)
	assert.Equal(t, 3, cols.Trust)
	assert.Equal(t, 5, cols.DealerHedge, "hedge column must be the net column")
	assert.False(t, cols.Exact)
}

func TestT86Schema_ResolvePositionalFallback(t *testing.T) {
	fields := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	cols := DefaultT86Schema.Resolve(fields)

	assert.Equal(t, 4, cols.Foreign)
	assert.Equal(t, 10, cols.Trust)
	assert.Equal(t, -1, cols.DealerHedge)
}

func TestParseT86(t *testing.T) {
	body := t86Payload(t, "OK", t86Fields,
		t86Row("2330", "12,345,678", "1,500,999", "-250,000"),
		t86Row("2317", "-1,999", "abc", ""),
	)

	flows, _, err := ParseT86(body, DefaultT86Schema)
	require.NoError(t, err)
	require.Len(t, flows, 2)

	assert.Equal(t, contracts.InstitutionalFlow{
		Code:           "2330",
		ForeignNet:     12345,
		TrustNet:       1500,
		DealerHedgeNet: -250,
		Market:         contracts.MarketListed,
	}, flows[0])

	assert.Equal(t, int64(-1), flows[1].ForeignNet, "truncates toward zero")
	assert.Equal(t, int64(0), flows[1].TrustNet, "malformed coerces to 0")
	assert.Equal(t, int64(0), flows[1].DealerHedgeNet)
}

func TestParseT86_NoHedgeColumn(t *testing.T) {
	fields := t86Fields[:11]
	row := t86Row("1101", "5,000,000", "100,000", "-900,000")[:11]

	flows, cols, err := ParseT86(t86Payload(t, "OK", fields, row), DefaultT86Schema)
	require.NoError(t, err)

	assert.Equal(t, -1, cols.DealerHedge)
	require.Len(t, flows, 1)
	assert.Equal(t, int64(0), flows[0].DealerHedgeNet)
}

func TestParseT86_StatNotOK(t *testing.T) {
	body := t86Payload(t, "很抱歉，沒有符合條件的資料!", nil)

	_, _, err := ParseT86(body, DefaultT86Schema)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestParseT86_Malformed(t *testing.T) {
	_, _, err := ParseT86([]byte(`<html>blocked</html>`), DefaultT86Schema)
	assert.Error(t, err)

	_, _, err = ParseT86([]byte(`{"stat":"OK","fields":[]}`), DefaultT86Schema)
	assert.Error(t, err)
}

func TestFetchInstitutionalFlow(t *testing.T) {
	body := t86Payload(t, "OK", t86Fields, t86Row("2330", "2,000,000", "0", "0"))

	var gotDate, gotSelect string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rwd/zh/fund/T86", r.URL.Path)
		gotDate = r.URL.Query().Get("date")
		gotSelect = r.URL.Query().Get("selectType")
		w.Write(body)
	}))
	defer server.Close()

	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	flows, err := newTestClient(server).FetchInstitutionalFlow(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, "20240503", gotDate)
	assert.Equal(t, "ALLBUT0999", gotSelect)
	require.Len(t, flows, 1)
	assert.Equal(t, int64(2000), flows[0].ForeignNet)
}
