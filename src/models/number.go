package models

import (
	"strconv"
	"strings"
)

// Number is a numeric field value that remembers whether it was written as an
// integer or as a floating-point value. A nil *Number is an absent value.
type Number struct {
	Int     int64
	Float   float64
	IsFloat bool
}

// IntNumber returns an integer Number.
func IntNumber(v int64) *Number { return &Number{Int: v} }

// FloatNumber returns a floating-point Number.
func FloatNumber(v float64) *Number { return &Number{Float: v, IsFloat: true} }

// Float64 returns the value as float64 regardless of its kind.
func (n Number) Float64() float64 {
	if n.IsFloat {
		return n.Float
	}
	return float64(n.Int)
}

// String formats integers without a decimal point and floats in their
// shortest round-trip form, keeping at least one decimal place.
func (n Number) String() string {
	if n.IsFloat {
		return FormatFloat(n.Float)
	}
	return strconv.FormatInt(n.Int, 10)
}

// FormatFloat writes v in its shortest form with at least one decimal place,
// so 602 becomes "602.0".
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

// MarshalJSON writes the number as a JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// FormatNumber renders an optional Number as a CSV cell.
func FormatNumber(n *Number) string {
	if n == nil {
		return ""
	}
	return n.String()
}
