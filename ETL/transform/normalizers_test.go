package transform

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int64
		ok    bool
	}{
		{"millions", "1.2M", 1_200_000, true},
		{"thousands", "500k", 500_000, true},
		{"thousands separator", "1,234,567", 1_234_567, true},
		{"plain", "159", 159, true},
		{"native number", 42.0, 42, true},
		{"empty", "", 0, false},
		{"nil", nil, 0, false},
		{"nan text", "NaN", 0, false},
		{"garbage", "3.0M reviews", 0, false},
		{"uppercase K is not a suffix", "5K", 0, false},
		{"infinite", math.Inf(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCount(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, NormalizeCount(tt.input))
		})
	}
}

func TestNormalizeSize(t *testing.T) {
	assert.False(t, NormalizeSize("Varies with device").Valid)
	assert.False(t, NormalizeSize(nil).Valid)
	assert.False(t, NormalizeSize("1,000+").Valid)

	size := NormalizeSize("19M")
	require.True(t, size.Valid)
	assert.Equal(t, 19.0, size.Float64)

	size = NormalizeSize("512k")
	require.True(t, size.Valid)
	assert.Equal(t, 0.5, size.Float64)

	size = NormalizeSize("8.7")
	require.True(t, size.Valid)
	assert.InDelta(t, 8.7, size.Float64, 1e-9)

	size = NormalizeSize("1,024k")
	require.True(t, size.Valid)
	assert.Equal(t, 1.0, size.Float64)

	size = NormalizeSize("1,200M")
	require.True(t, size.Valid)
	assert.Equal(t, 1200.0, size.Float64)

	size = NormalizeSize(0)
	require.True(t, size.Valid, "zero size is a value, not a missing marker")
	assert.Equal(t, 0.0, size.Float64)
}

func TestNormalizeInstalls(t *testing.T) {
	assert.Equal(t, int64(10_000), NormalizeInstalls("10,000+"))
	assert.Equal(t, int64(1_000_000_000), NormalizeInstalls("1,000,000,000+"))
	assert.Equal(t, int64(0), NormalizeInstalls("0"))
	assert.Equal(t, int64(0), NormalizeInstalls("Free"))
	assert.Equal(t, int64(0), NormalizeInstalls(nil))

	_, ok := ParseInstalls("Free")
	assert.False(t, ok)
}

func TestNormalizePrice(t *testing.T) {
	assert.Equal(t, 0.0, NormalizePrice("Free"))
	assert.Equal(t, 0.0, NormalizePrice("FREE"))
	assert.Equal(t, 0.0, NormalizePrice("0"))
	assert.Equal(t, 4.99, NormalizePrice("$4.99"))
	assert.Equal(t, 4.99, NormalizePrice(" $4.99 "))
	assert.Equal(t, 1.5, NormalizePrice(1.5))
	assert.Equal(t, 0.0, NormalizePrice("Everyone"))
	assert.Equal(t, 0.0, NormalizePrice(""))

	_, ok := ParsePrice("Everyone")
	assert.False(t, ok)
	_, ok = ParsePrice("Free")
	assert.True(t, ok)
}

func TestNormalizeDate(t *testing.T) {
	d := NormalizeDate("January 7, 2018")
	require.True(t, d.Valid)
	assert.Equal(t, time.Date(2018, time.January, 7, 0, 0, 0, 0, time.UTC), d.Time)

	d = NormalizeDate("2023-05-10T07:00:00Z")
	require.True(t, d.Valid)
	assert.Equal(t, "2023-05-10", d.String())

	assert.False(t, NormalizeDate("").Valid)
	assert.False(t, NormalizeDate(nil).Valid)
	assert.False(t, NormalizeDate("not a date").Valid)

	// числа не превращаются в даты
	for _, raw := range []string{"4.4", "1234567890", "2018", "12.05.2018.1"} {
		assert.False(t, NormalizeDate(raw).Valid, raw)
	}
	assert.False(t, NormalizeDate("0001-01-01").Valid)
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"float", 4.5, 4.5, true},
		{"int", 7, 7, true},
		{"json number", json.Number("3.25"), 3.25, true},
		{"string", " 12.5 ", 12.5, true},
		{"empty", "", 0, false},
		{"nan", "NaN", 0, false},
		{"null", "NULL", 0, false},
		{"none", "None", 0, false},
		{"garbage", "abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"native nan", math.NaN(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceFloat(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}

	n, ok := CoerceInt("12.9")
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)
}
