package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	cases := map[string]float64{
		"100":        100,
		" 1,250.5 ":  1250.5,
		"Rp 75,000":  75000,
		"\ufeff12.5": 12.5,
	}
	for raw, want := range cases {
		got, err := ParseFloat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "abc", "NaN", "Inf", "#N/A"} {
		_, err := ParseFloat(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseIntRejectsFractions(t *testing.T) {
	got, err := ParseInt("3.0")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = ParseInt("2.5")
	assert.Error(t, err)
}

func TestZeroOnInvalid(t *testing.T) {
	assert.Equal(t, 0.0, FloatOrZero("#N/A"))
	assert.Equal(t, 0.0, FloatOrZero("n/a"))
	assert.Equal(t, 0.0, FloatOrZero(""))
	assert.Equal(t, 0.0, FloatOrZero("garbage"))
	assert.Equal(t, 42.0, FloatOrZero("42"))

	assert.Equal(t, 0, IntOrZero("x"))
	assert.Equal(t, 2, IntOrZero("2.9"))
	assert.Equal(t, 7, IntOrZero("7"))
}

func TestStrictPolicyReportsErrors(t *testing.T) {
	_, err := Strict.Float("#N/A")
	assert.Error(t, err)
	_, err = Strict.Int("1.5")
	assert.Error(t, err)
}

func TestFinite(t *testing.T) {
	assert.Equal(t, 0.0, Finite(math.NaN()))
	assert.Equal(t, 0.0, Finite(math.Inf(1)))
	assert.Equal(t, 1.5, Finite(1.5))
}

func TestIntRejectsOutOfRange(t *testing.T) {
	_, err := Strict.Int("1e30")
	assert.Error(t, err)
	_, err = ParseInt("-1e30")
	assert.Error(t, err)
	assert.Equal(t, 0, IntOrZero("1e30"))
	assert.Equal(t, 0, IntOrZero("9223372036854775808"))
	assert.Equal(t, 42, IntOrZero("42"))

	assert.True(t, FitsInt(-9.2e18))
	assert.False(t, FitsInt(math.Inf(1)))
}
