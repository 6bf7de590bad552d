package invoice

import "math"

// TaxRate is the single rate applied to every line.
const TaxRate = 0.18

// taxRatePercent is TaxRate expressed in whole percent for cent arithmetic.
const taxRatePercent = 18

// maxExactCents bounds the integer cent path. Past 2^53 float64 no longer
// holds every cent, and larger products would overflow int64.
const maxExactCents = 1 << 53

// LineAmounts is the derived part of a product line.
type LineAmounts struct {
	Discount     float64
	TaxableValue float64
	TaxAmount    float64
	TotalValue   float64
}

// Totals aggregates a set of lines.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxTotal   float64 `json:"taxTotal"`
	GrandTotal float64 `json:"grandTotal"`
}

// DeriveLine computes the monetary fields of a line. Non-finite inputs count
// as zero and the discount is clamped to [0, 100]; the clamped value is
// returned so callers store it in place of the raw input.
//
// Amounts are settled in integer cents with half-away-from-zero rounding and
// the tax is taken on the rounded taxable value, so TaxableValue+TaxAmount
// always equals TotalValue.
func DeriveLine(qty, salePrice, discount float64) LineAmounts {
	qty = finite(qty)
	salePrice = finite(salePrice)
	discount = ClampDiscount(discount)

	gross := qty * salePrice
	taxable := finite(gross - gross*discount/100)
	if !inCentRange(taxable) {
		return deriveLarge(taxable, discount)
	}

	taxableCents := toCents(taxable)
	taxCents := divRound(taxableCents*taxRatePercent, 100)
	return LineAmounts{
		Discount:     discount,
		TaxableValue: fromCents(taxableCents),
		TaxAmount:    fromCents(taxCents),
		TotalValue:   fromCents(taxableCents + taxCents),
	}
}

// ClampDiscount bounds a discount percentage to [0, 100].
func ClampDiscount(discount float64) float64 {
	discount = finite(discount)
	switch {
	case discount < 0:
		return 0
	case discount > 100:
		return 100
	}
	return discount
}

// RoundCents rounds v to two decimals, half away from zero.
func RoundCents(v float64) float64 {
	if !inCentRange(v) {
		return math.Round(finite(v)*100) / 100
	}
	return fromCents(toCents(v))
}

// deriveLarge settles amounts beyond the exact cent range in plain float64.
// The total is still the sum of the two rounded parts.
func deriveLarge(taxable, discount float64) LineAmounts {
	taxable = math.Round(taxable*100) / 100
	tax := math.Round(taxable*taxRatePercent) / 100
	return LineAmounts{
		Discount:     discount,
		TaxableValue: taxable,
		TaxAmount:    tax,
		TotalValue:   taxable + tax,
	}
}

// AggregateTotal sums the line totals. It is recomputed on every call.
func AggregateTotal(lines []ProductLine) float64 {
	return SumLines(lines).GrandTotal
}

// SumLines totals taxable value, tax and line totals in cents, so the result
// does not depend on line order.
func SumLines(lines []ProductLine) Totals {
	var taxable, tax, total int64
	for _, line := range lines {
		if !inCentRange(line.TaxableValue) || !inCentRange(line.TaxAmount) || !inCentRange(line.TotalValue) {
			return sumLarge(lines)
		}
		taxable += toCents(line.TaxableValue)
		tax += toCents(line.TaxAmount)
		total += toCents(line.TotalValue)
		if !centsInRange(taxable) || !centsInRange(tax) || !centsInRange(total) {
			return sumLarge(lines)
		}
	}
	return Totals{
		Subtotal:   fromCents(taxable),
		TaxTotal:   fromCents(tax),
		GrandTotal: fromCents(total),
	}
}

// sumLarge is the float64 fallback for totals past the exact cent range.
func sumLarge(lines []ProductLine) Totals {
	var out Totals
	for _, line := range lines {
		out.Subtotal += finite(line.TaxableValue)
		out.TaxTotal += finite(line.TaxAmount)
		out.GrandTotal += finite(line.TotalValue)
	}
	out.Subtotal = RoundCents(out.Subtotal)
	out.TaxTotal = RoundCents(out.TaxTotal)
	out.GrandTotal = RoundCents(out.GrandTotal)
	return out
}

func inCentRange(v float64) bool {
	return math.Abs(finite(v)*100) < maxExactCents
}

func centsInRange(c int64) bool {
	return c > -maxExactCents && c < maxExactCents
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// toCents scales to cents. The intermediate snap to 1e-6 of a cent absorbs
// binary representation error (1.005*100 == 100.49999999999999).
func toCents(v float64) int64 {
	c := finite(v) * 100
	c = math.Round(c*1e6) / 1e6
	return int64(math.Round(c))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

// divRound divides with half-away-from-zero rounding. d must be positive.
func divRound(n, d int64) int64 {
	if n < 0 {
		return -((-n + d/2) / d)
	}
	return (n + d/2) / d
}
