package s0_data

import (
	"fmt"
	"time"
)

// MarketCloseHour is the local hour after which the day's institutional data is final
const MarketCloseHour = 15

// LastTradingDate returns the reference trading date for now.
// Weekends roll back to Friday; a weekday before MarketCloseHour rolls back to the
// previous weekday. Exchange holidays are not known here and fall through to the feeds,
// which answer with an empty payload.
// ⭐ SSOT: 기준 거래일 계산은 여기서만
func LastTradingDate(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	d := rollBackToWeekday(today)
	if d.Equal(today) && now.Hour() < MarketCloseHour {
		d = rollBackToWeekday(d.AddDate(0, 0, -1))
	}
	return d
}

func rollBackToWeekday(d time.Time) time.Time {
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// ROCDate formats a date in the Republic-of-China calendar: "113/05/03"
func ROCDate(d time.Time) string {
	return fmt.Sprintf("%d/%02d/%02d", d.Year()-1911, int(d.Month()), d.Day())
}

// GregorianDate formats a date as YYYYMMDD
func GregorianDate(d time.Time) string {
	return d.Format("20060102")
}
