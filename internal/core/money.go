// Package core holds the budget, category, and transaction domain model
// together with the derived-value calculations (spend aggregation, budget
// allocation, monthly analytics).
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) separators. Zero is a valid result; negative values and
// malformed input are rejected so the rest of the domain never sees a
// string-typed amount.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
//	ParseDecimalToCents("-3") -> error
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Invalid(KindAmountInvalid, "amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, Invalid(KindAmountInvalid, "amount must not be signed")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, Invalid(KindAmountInvalid, "amount is not a valid number")
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, Invalid(KindAmountInvalid, "amount is not a valid number")
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, Invalid(KindAmountInvalid, "amount is not a valid number")
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, Invalid(KindAmountInvalid, "amount is not a valid number")
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, Invalid(KindAmountInvalid, "amount out of range")
	}
	// Take first two fractional digits; half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// Units returns the amount rounded half-up to whole currency units, as the
// analytics charts display it.
func (m Money) Units() int64 {
	neg := m.Cents < 0
	c := m.Cents
	if neg {
		c = -c
	}
	u := (c + 50) / 100
	if neg {
		return -u
	}
	return u
}

// Float returns the decimal value for JSON responses. Calculations stay in
// cents to avoid floating-point drift.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}
