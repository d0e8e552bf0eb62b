package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupo-sgp/erp-api/internal/money"
)

func TestCeilCents(t *testing.T) {
	assert.Equal(t, 10.35, money.CeilCents(10.341))
	assert.Equal(t, 10.34, money.CeilCents(10.34))
	assert.Equal(t, 0.01, money.CeilCents(0.001))
	assert.Equal(t, 0.0, money.CeilCents(0))
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 10.34, money.RoundCents(10.344))
	assert.Equal(t, 10.35, money.RoundCents(10.345))
	assert.Equal(t, 10.35, money.RoundCents(10.346))
	assert.Equal(t, 57.96, money.RoundCents(362.25*0.16))
}

func TestLineCost(t *testing.T) {
	// 3 × 33.333 = 99.999 rounds up to 100.00
	assert.Equal(t, 100.0, money.LineCost(3, 33.333))
	assert.Equal(t, 25.5, money.LineCost(2, 12.75))
}

func TestUnitCost(t *testing.T) {
	// Divides and rounds up
	assert.Equal(t, 33.34, money.UnitCost(100, 3))
	// Exact division stays exact
	assert.Equal(t, 25.0, money.UnitCost(100, 4))
	// Paid lines floor at one cent
	assert.Equal(t, 0.01, money.UnitCost(0.001, 1))
	// Free-of-charge lines stay free
	assert.Equal(t, 0.0, money.UnitCost(0, 5))
	// Zero or negative quantity yields zero
	assert.Equal(t, 0.0, money.UnitCost(100, 0))
	assert.Equal(t, 0.0, money.UnitCost(100, -2))
}

func TestNormalizeRate(t *testing.T) {
	// Whole percents become fractions
	assert.Equal(t, 0.035, money.NormalizeRate(3.5))
	assert.Equal(t, 0.16, money.NormalizeRate(16))
	// Fractions pass through
	assert.Equal(t, 0.035, money.NormalizeRate(0.035))
	assert.Equal(t, 1.0, money.NormalizeRate(1))
	assert.Equal(t, 0.0, money.NormalizeRate(0))
}

func TestIsSettled(t *testing.T) {
	assert.True(t, money.IsSettled(0))
	assert.True(t, money.IsSettled(0.01))
	assert.True(t, money.IsSettled(-0.5))
	assert.False(t, money.IsSettled(0.02))
	assert.False(t, money.IsSettled(100))
}

func TestParseAmount(t *testing.T) {
	v, err := money.ParseAmount("$1,234.50")
	require.NoError(t, err)
	assert.Equal(t, 1234.50, v)

	v, err = money.ParseAmount(" 99.90 ")
	require.NoError(t, err)
	assert.Equal(t, 99.90, v)

	v, err = money.ParseAmount("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = money.ParseAmount("abc")
	assert.Error(t, err)
}
