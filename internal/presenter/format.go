package presenter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dealportal/backend-go/internal/models"
)

// Placeholder is shown wherever a number is unavailable.
const Placeholder = "—"

// FormatMoney renders v with two decimals and English digit grouping.
func FormatMoney(symbol string, v float64) string {
	p := message.NewPrinter(language.English)
	s := p.Sprintf("%.2f", math.Abs(v))
	if v < 0 && s != "0.00" {
		return "-" + symbol + s
	}
	return symbol + s
}

func FormatAmount(symbol string, a models.Amount) string {
	if !a.Valid {
		return Placeholder
	}
	return FormatMoney(symbol, a.Value)
}

// PortalLink points back at the portal, keeping email and origin and adding
// dealId when one is given.
func PortalLink(basePath, email, origin, dealID string) string {
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	if origin != "" {
		q.Set("origin", origin)
	}
	if dealID != "" {
		q.Set("dealId", dealID)
	}
	if len(q) == 0 {
		return basePath
	}
	return basePath + "?" + q.Encode()
}

// PayLink builds the external payment page URL carrying the remaining
// balance and the customer's email.
func PayLink(paymentURL string, remaining float64, email string) string {
	u, err := url.Parse(paymentURL)
	if err != nil || paymentURL == "" {
		return ""
	}
	q := u.Query()
	q.Set("amount", strconv.FormatFloat(remaining, 'f', 2, 64))
	if email != "" {
		q.Set("email", email)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Payable reports whether a pay link makes sense for the ledger.
func Payable(l models.Ledger) bool {
	return l.Remaining.Valid && l.Remaining.Value > 0
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
