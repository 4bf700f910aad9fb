package services

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"dealportal/backend-go/internal/models"
)

// ParsePayment decodes one installment field of the form
// "<amount>,<transactionId>,<date>". Trailing parts are optional. Entries
// without a finite leading amount yield ok=false.
func ParsePayment(raw string) (models.Payment, bool) {
	if strings.TrimSpace(raw) == "" {
		return models.Payment{}, false
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	amount, ok := parseNumber(parts[0])
	if !ok {
		return models.Payment{}, false
	}
	p := models.Payment{Amount: amount}
	if len(parts) > 1 {
		p.TransactionID = parts[1]
	}
	if len(parts) > 2 {
		p.Date = parts[2]
	}
	return p, true
}

// BuildLedger derives the payment history and balance of a deal. Payments
// keep installment field order, not date order. Totals are exact decimal
// sums of the parsed amounts, rounded to float64 once at the end.
//
// A payment that would push the total past float64 range is dropped like a
// malformed entry, and remaining is unavailable unless it is finite.
func BuildLedger(deal models.Deal) models.Ledger {
	payments := make([]models.Payment, 0, len(deal.PaymentFields))
	sum := decimal.Zero
	for _, raw := range deal.PaymentFields {
		p, ok := ParsePayment(raw)
		if !ok {
			continue
		}
		next := sum.Add(decimal.NewFromFloat(p.Amount))
		if !finite(next.InexactFloat64()) {
			continue
		}
		payments = append(payments, p)
		sum = next
	}

	totalPaid := sum
	if override, ok := parseNumber(deal.TotalPaidOverride); ok {
		totalPaid = decimal.NewFromFloat(override)
	}

	ledger := models.Ledger{
		ProgramFee: models.Unavailable(),
		TotalPaid:  totalPaid.InexactFloat64(),
		Remaining:  models.Unavailable(),
		Payments:   payments,
	}
	if fee, ok := parseNumber(deal.ProgramFee); ok {
		ledger.ProgramFee = models.Available(fee)
		if remaining := decimal.NewFromFloat(fee).Sub(totalPaid).InexactFloat64(); finite(remaining) {
			ledger.Remaining = models.Available(remaining)
		}
	}
	return ledger
}

// maxExponent bounds the decimal exponent accepted from CRM text so that
// values like "1e999999999" are refused before they are expanded.
const maxExponent = 400

// parseNumber accepts plain decimal text with an optional sign and exponent.
// Go literal forms such as "1_000" or "0x1p4" are rejected.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return 0, false
	}
	v := d.InexactFloat64()
	if !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
