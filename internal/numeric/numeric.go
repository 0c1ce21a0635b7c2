// Package numeric converts user- and spreadsheet-supplied text into numbers.
//
// Every conversion is explicit about what happens to input it cannot read:
// Strict returns an error, ZeroOnInvalid yields 0.
package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Policy int

const (
	Strict Policy = iota
	ZeroOnInvalid
)

// IsNotAvailable reports spreadsheet placeholders that stand for "no value".
func IsNotAvailable(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "#N/A", "N/A", "-":
		return true
	}
	return false
}

func normalize(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.TrimPrefix(value, "Rp")
	value = strings.TrimPrefix(value, "rp")
	value = strings.ReplaceAll(value, ",", "")
	value = strings.ReplaceAll(value, " ", "")
	return value
}

func ParseFloat(raw string) (float64, error) {
	value := normalize(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return parsed, nil
}

// ParseInt accepts integral floats such as "3.0", which spreadsheets emit for
// numeric cells.
func ParseInt(raw string) (int, error) {
	asFloat, err := ParseFloat(raw)
	if err != nil {
		return 0, err
	}
	if math.Mod(asFloat, 1) != 0 {
		return 0, fmt.Errorf("must be an integer: %q", raw)
	}
	if !FitsInt(asFloat) {
		return 0, fmt.Errorf("out of range: %q", raw)
	}
	return int(asFloat), nil
}

// FitsInt reports whether value truncates to an int without overflow.
func FitsInt(value float64) bool {
	return value >= math.MinInt && value < -float64(math.MinInt)
}

func (p Policy) Float(raw string) (float64, error) {
	if IsNotAvailable(raw) && p == ZeroOnInvalid {
		return 0, nil
	}
	value, err := ParseFloat(raw)
	if err != nil && p == ZeroOnInvalid {
		return 0, nil
	}
	return value, err
}

// Int truncates fractional input under ZeroOnInvalid rather than rejecting it.
// Values outside the int range are errors under Strict and 0 otherwise.
func (p Policy) Int(raw string) (int, error) {
	if p == Strict {
		return ParseInt(raw)
	}
	value, err := ParseFloat(raw)
	if err != nil || !FitsInt(value) {
		return 0, nil
	}
	return int(value), nil
}

func FloatOrZero(raw string) float64 {
	value, _ := ZeroOnInvalid.Float(raw)
	return value
}

func IntOrZero(raw string) int {
	value, _ := ZeroOnInvalid.Int(raw)
	return value
}

// Finite replaces NaN and infinities with 0.
func Finite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
