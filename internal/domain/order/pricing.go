package order

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// AppliedRate returns the discount rate used for an order: the greater of the
// site-wide global rate and the member's personal rate. The member never gets
// a worse deal than the global rate.
func AppliedRate(global, member decimal.Decimal) decimal.Decimal {
	if member.GreaterThan(global) {
		return member
	}
	return global
}

// DiscountAmountCents returns round(subtotal * rate / 100) in integer cents,
// clamped to [0, subtotal] so the discount is never negative and never
// exceeds the subtotal.
func DiscountAmountCents(subtotalCents int64, rate decimal.Decimal) int64 {
	amount := decimal.NewFromInt(subtotalCents).
		Mul(rate).
		Div(hundred).
		Round(0).
		IntPart()
	if amount < 0 {
		return 0
	}
	if amount > subtotalCents {
		return subtotalCents
	}
	return amount
}

// PointsForTotal returns floor(totalDollars * pointsPerDollar). With the
// default accrual rate of 0.01, a $250.00 order earns 2 points and a $99.00
// order earns none.
func PointsForTotal(totalCents int64, pointsPerDollar decimal.Decimal) int64 {
	dollars := decimal.NewFromInt(totalCents).Div(hundred)
	return dollars.Mul(pointsPerDollar).Floor().IntPart()
}
