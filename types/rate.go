package types

import (
	"fmt"
	"strconv"
	"strings"
)

// TaxRate is a tax percentage held in basis points so that applying it to
// Money stays in integer arithmetic. "12" parses to 1200 basis points,
// "12.5" to 1250. At most two fractional digits are accepted.
type TaxRate struct {
	bp int64
}

// NewTaxRate creates a TaxRate from basis points (1% = 100 bp).
func NewTaxRate(basisPoints int64) TaxRate {
	return TaxRate{bp: basisPoints}
}

// ParseTaxRate parses a decimal percentage string into a TaxRate.
// Negative rates are rejected.
func ParseTaxRate(s string) (TaxRate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TaxRate{}, fmt.Errorf("taxrate: parse %q: empty string", s)
	}
	if strings.HasPrefix(s, "-") {
		return TaxRate{}, fmt.Errorf("taxrate: parse %q: negative rate", s)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 2 {
		return TaxRate{}, fmt.Errorf("taxrate: parse %q: more than two fractional digits", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	pct, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return TaxRate{}, fmt.Errorf("taxrate: parse %q: %w", s, err)
	}
	sub, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return TaxRate{}, fmt.Errorf("taxrate: parse %q: %w", s, err)
	}

	return TaxRate{bp: pct*100 + sub}, nil
}

// BasisPoints returns the rate in basis points.
func (r TaxRate) BasisPoints() int64 { return r.bp }

// IsZero returns true for a zero rate.
func (r TaxRate) IsZero() bool { return r.bp == 0 }

// Apply computes the tax amount for a Money value, rounding half-up on
// the smallest currency unit.
func (r TaxRate) Apply(m Money) Money {
	n := m.Amount * r.bp
	q := n / 10000
	rem := n % 10000
	if rem >= 5000 {
		q++
	} else if rem <= -5000 {
		q--
	}
	return Money{Amount: q, Currency: m.Currency}
}

// String formats the rate back as a decimal percentage ("12", "12.5").
func (r TaxRate) String() string {
	whole := r.bp / 100
	frac := r.bp % 100
	if frac < 0 {
		frac = -frac
	}
	switch {
	case frac == 0:
		return strconv.FormatInt(whole, 10)
	case frac%10 == 0:
		return fmt.Sprintf("%d.%d", whole, frac/10)
	default:
		return fmt.Sprintf("%d.%02d", whole, frac)
	}
}
