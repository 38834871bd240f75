package rowparse

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a required, non-negative currency value.
//
// Everything but digits, separators and signs is discarded. When both '.' and
// ',' appear, the one that appears last is the decimal mark and the other is
// a thousands separator. When only one kind appears it is a thousands
// separator if repeated and the decimal mark otherwise.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}

	var b strings.Builder
	negative := false
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
			b.WriteRune(r)
		case r == '.' || r == ',':
			b.WriteRune(r)
		case r == '-':
			negative = true
		}
	}
	if digits == 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	if negative {
		return decimal.Zero, ErrNegative
	}

	canonical, ok := canonicalNumber(b.String())
	if !ok {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseOptionalAmount is ParseAmount for fields that may be absent; an empty
// value parses to zero.
func ParseOptionalAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return ParseAmount(s)
}

func canonicalNumber(s string) (string, bool) {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	var decimalMark, thousands string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			decimalMark, thousands = ".", ","
		} else {
			decimalMark, thousands = ",", "."
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			thousands = "."
		} else {
			decimalMark = "."
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			thousands = ","
		} else {
			decimalMark = ","
		}
	}

	if thousands != "" {
		s = strings.ReplaceAll(s, thousands, "")
	}
	if decimalMark != "" {
		if strings.Count(s, decimalMark) != 1 {
			return "", false
		}
		s = strings.Replace(s, decimalMark, ".", 1)
	}
	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	return s, s != ""
}
