package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/auditcase/internal/money"
)

func TestTotal(t *testing.T) {
	type testCase struct {
		name     string
		subtotal int64
		rate     string
		shipping int64
		want     int64
	}

	tests := []testCase{
		{name: "Whole cents", subtotal: 10000, rate: "0.07", shipping: 2500, want: 13200},
		{name: "Half cent rounds up", subtotal: 150, rate: "0.07", shipping: 0, want: 161},
		{name: "Fractional rate", subtotal: 123456, rate: "0.0825", shipping: 3000, want: 136641},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := money.Total(tt.subtotal, decimal.RequireFromString(tt.rate), tt.shipping)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProportion(t *testing.T) {
	assert.Equal(t, int64(5000), money.Proportion(10000, 15, 30))
	assert.Equal(t, int64(3333), money.Proportion(10000, 1, 3))
	assert.Equal(t, int64(6667), money.Proportion(10000, 2, 3))
}

func TestParse(t *testing.T) {
	type testCase struct {
		name  string
		input string
		want  int64
	}

	tests := []testCase{
		{name: "Plain", input: "12.50", want: 1250},
		{name: "Thousands", input: "1,234.56", want: 123456},
		{name: "Decimal comma", input: "1234,56", want: 123456},
		{name: "Dollar sign", input: "$99", want: 9900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := money.Parse("abc")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.05", money.Format(5))
	assert.Equal(t, "1,234.56", money.Format(123456))
	assert.Equal(t, "-1,000,000.00", money.Format(-100000000))
}

func TestFloorTo(t *testing.T) {
	assert.Equal(t, int64(1200000), money.FloorTo(1234567, 100000))
	assert.Equal(t, int64(55), money.FloorTo(55, 0))
}
