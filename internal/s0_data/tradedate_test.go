package s0_data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var taipei = time.FixedZone("CST", 8*60*60)

func TestLastTradingDate(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "saturday resolves to friday",
			now:  time.Date(2024, 5, 4, 10, 0, 0, 0, taipei),
			want: time.Date(2024, 5, 3, 0, 0, 0, 0, taipei),
		},
		{
			name: "sunday evening resolves to friday",
			now:  time.Date(2024, 5, 5, 20, 0, 0, 0, taipei),
			want: time.Date(2024, 5, 3, 0, 0, 0, 0, taipei),
		},
		{
			name: "weekday after close is today",
			now:  time.Date(2024, 5, 8, 15, 0, 0, 0, taipei),
			want: time.Date(2024, 5, 8, 0, 0, 0, 0, taipei),
		},
		{
			name: "weekday before close is previous weekday",
			now:  time.Date(2024, 5, 8, 14, 59, 0, 0, taipei),
			want: time.Date(2024, 5, 7, 0, 0, 0, 0, taipei),
		},
		{
			name: "monday morning skips the weekend",
			now:  time.Date(2024, 5, 6, 9, 0, 0, 0, taipei),
			want: time.Date(2024, 5, 3, 0, 0, 0, 0, taipei),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LastTradingDate(tt.now)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestROCDate(t *testing.T) {
	assert.Equal(t, "113/05/03", ROCDate(time.Date(2024, 5, 3, 0, 0, 0, 0, taipei)))
	assert.Equal(t, "112/12/29", ROCDate(time.Date(2023, 12, 29, 0, 0, 0, 0, taipei)))
}

func TestGregorianDate(t *testing.T) {
	assert.Equal(t, "20240503", GregorianDate(time.Date(2024, 5, 3, 0, 0, 0, 0, taipei)))
}
