package contracts

import (
	"sort"
	"strings"
)

// Market identifies which exchange a security trades on
type Market string

const (
	MarketListed Market = "listed" // 上市 (TWSE)
	MarketOTC    Market = "otc"    // 上櫃 (TPEx)
)

// YahooSuffix returns the price-history ticker suffix for the market
func (m Market) YahooSuffix() string {
	if m == MarketOTC {
		return ".TWO"
	}
	return ".TW"
}

// Label returns the local display label
func (m Market) Label() string {
	if m == MarketOTC {
		return "上櫃"
	}
	return "上市"
}

// ParseMarket accepts the enum value or the local label
func ParseMarket(s string) (Market, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "listed", "twse", "上市":
		return MarketListed, true
	case "otc", "tpex", "上櫃":
		return MarketOTC, true
	default:
		return "", false
	}
}

// SecurityRecord is one entry of the exchange directory
type SecurityRecord struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market Market `json:"market"`
}

// Directory maps security codes to display names and back
// ⭐ SSOT: 종목 코드/이름 매핑은 여기서만
type Directory struct {
	NameToCode map[string]string
	CodeToName map[string]string
	records    map[string]SecurityRecord
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{
		NameToCode: make(map[string]string),
		CodeToName: make(map[string]string),
		records:    make(map[string]SecurityRecord),
	}
}

// Add registers a record. Only the directory builder calls this.
func (d *Directory) Add(rec SecurityRecord) {
	d.NameToCode[rec.Name] = rec.Code
	d.CodeToName[rec.Code] = rec.Name
	d.records[rec.Code] = rec
}

// Len returns the number of securities
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Record returns the record for a code
func (d *Directory) Record(code string) (SecurityRecord, bool) {
	if d == nil {
		return SecurityRecord{}, false
	}
	rec, ok := d.records[code]
	return rec, ok
}

// Name returns the display name for a code
func (d *Directory) Name(code string) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.CodeToName[code]
	return name, ok
}

// Lookup resolves a search input: a code, a name, or a "code name" entry
func (d *Directory) Lookup(query string) (SecurityRecord, bool) {
	if d == nil {
		return SecurityRecord{}, false
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return SecurityRecord{}, false
	}

	if rec, ok := d.records[query]; ok {
		return rec, true
	}
	if code, ok := d.NameToCode[query]; ok {
		return d.records[code], true
	}

	// "2330 台積電" from the search list
	if fields := strings.Fields(query); len(fields) > 1 {
		if rec, ok := d.records[fields[0]]; ok {
			return rec, true
		}
	}

	return SecurityRecord{}, false
}

// Search returns records whose code or name contains the query, in code order
func (d *Directory) Search(query string, limit int) []SecurityRecord {
	query = strings.TrimSpace(query)
	results := make([]SecurityRecord, 0)
	if d == nil || query == "" {
		return results
	}

	for _, code := range d.codes() {
		rec := d.records[code]
		if strings.HasPrefix(rec.Code, query) || strings.Contains(rec.Name, query) {
			results = append(results, rec)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results
}

// SearchList returns "code name" entries in code order
func (d *Directory) SearchList() []string {
	if d == nil {
		return []string{}
	}

	codes := d.codes()
	list := make([]string, 0, len(codes))
	for _, code := range codes {
		list = append(list, code+" "+d.CodeToName[code])
	}
	return list
}

// CountByMarket returns how many securities each market contributed
func (d *Directory) CountByMarket() map[Market]int {
	counts := make(map[Market]int)
	if d == nil {
		return counts
	}
	for _, rec := range d.records {
		counts[rec.Market]++
	}
	return counts
}

func (d *Directory) codes() []string {
	codes := make([]string, 0, len(d.records))
	for code := range d.records {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
