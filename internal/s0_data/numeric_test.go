package s0_data

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeInt(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  int64
	}{
		{"thousands separator", "1,234", 1234},
		{"negative with separator", "-12,345,678", -12345678},
		{"decimal truncates", "99.9", 99},
		{"negative decimal truncates toward zero", "-99.9", -99},
		{"padded", "  42 ", 42},
		{"letters", "abc", 0},
		{"empty", "", 0},
		{"dash placeholder", "--", 0},
		{"nil", nil, 0},
		{"float", 1500.7, 1500},
		{"int", 7, 7},
		{"json number", json.Number("3,000"), 3000},
		{"nan", "NaN", 0},
		{"inf", "Inf", 0},
		{"unsupported type", []int{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeInt(tt.input))
		})
	}
}

func TestToLots(t *testing.T) {
	assert.Equal(t, int64(1234), ToLots("1,234,567"))
	assert.Equal(t, int64(-1234), ToLots("-1,234,567"), "truncates toward zero")
	assert.Equal(t, int64(0), ToLots("999"))
	assert.Equal(t, int64(0), ToLots("-999"))
	assert.Equal(t, int64(0), ToLots("n/a"))
}
