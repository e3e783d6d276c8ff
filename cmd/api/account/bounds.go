package account

import "github.com/shopspring/decimal"

// MaxScale is the number of decimal places an amount, balance, limit or rate
// may carry.
const MaxScale int32 = 8

// maxExponent is log10 of MaxAmount.
const maxExponent int32 = 15

// MaxAmount bounds the magnitude of any amount, limit or rate, exclusive.
var MaxAmount = decimal.New(1, maxExponent)

// InRange reports whether d carries at most MaxScale decimal places and its
// magnitude is below MaxAmount. Exponent and coefficient size are checked
// before any comparison, so a value like 1e20000000 is rejected without
// being expanded.
func InRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -MaxScale || exp > maxExponent {
		return false
	}
	if d.Coefficient().BitLen() > 128 {
		return false
	}
	return d.Abs().LessThan(MaxAmount)
}
