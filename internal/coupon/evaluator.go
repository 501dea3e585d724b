// Package coupon prices discount codes against an order subtotal.
package coupon

import "strings"

type Kind string

const (
	KindPercent Kind = "percent"
	KindFixed   Kind = "fixed"
)

type Coupon struct {
	Code  string
	Kind  Kind
	Value int64
}

type Result struct {
	Discount    int64
	AppliedCode string
}

var defaultTable = map[string]Coupon{
	"HVH10":  {Code: "HVH10", Kind: KindPercent, Value: 10},
	"GIAM5K": {Code: "GIAM5K", Kind: KindFixed, Value: 5000},
}

// Evaluate returns the discount for code against subtotal using the built-in
// coupon table. Unknown and empty codes yield a zero discount rather than an
// error.
func Evaluate(subtotal int64, code string) Result {
	return EvaluateWith(defaultTable, subtotal, code)
}

// EvaluateWith is Evaluate over an explicit table keyed by upper-case code.
func EvaluateWith(table map[string]Coupon, subtotal int64, code string) Result {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || subtotal <= 0 {
		return Result{}
	}
	c, ok := table[code]
	if !ok {
		return Result{}
	}

	var discount int64
	switch c.Kind {
	case KindPercent:
		discount = subtotal * c.Value / 100
	case KindFixed:
		discount = c.Value
	default:
		return Result{}
	}

	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	return Result{Discount: discount, AppliedCode: c.Code}
}
