package models

import "strconv"

// PaymentFieldCount is the number of installment properties carried on a deal.
const PaymentFieldCount = 5

type Contact struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func (c Contact) DisplayName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// Deal holds the raw CRM properties of a program. Numeric properties are kept
// as the CRM sent them; the ledger builder owns their coercion.
type Deal struct {
	ID                string                    `json:"id"`
	Name              string                    `json:"name"`
	ProgramFee        string                    `json:"programFee,omitempty"`
	TotalPaidOverride string                    `json:"totalPaidOverride,omitempty"`
	PaymentFields     [PaymentFieldCount]string `json:"paymentFields"`
	ContextEmail      string                    `json:"contextEmail"`
	ContextOrigin     string                    `json:"contextOrigin,omitempty"`
}

// WithContext returns a copy of d stamped with the caller's email and origin.
func (d Deal) WithContext(email, origin string) Deal {
	d.ContextEmail = email
	d.ContextOrigin = origin
	return d
}

type Payment struct {
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
	Date          string  `json:"date"`
}

// Amount is a number that may be unavailable, e.g. a missing program fee.
type Amount struct {
	Value float64
	Valid bool
}

func Available(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

func Unavailable() Amount {
	return Amount{}
}

// MarshalJSON renders an unavailable amount as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, a.Value, 'f', -1, 64), nil
}

type Ledger struct {
	ProgramFee Amount    `json:"programFee"`
	TotalPaid  float64   `json:"totalPaid"`
	Remaining  Amount    `json:"remaining"`
	Payments   []Payment `json:"payments"`
}

type LedgerResponse struct {
	TsISO   string `json:"tsISO"`
	Email   string `json:"email"`
	Origin  string `json:"origin,omitempty"`
	DealID  string `json:"dealId"`
	Name    string `json:"name"`
	Ledger  Ledger `json:"ledger"`
	PayLink string `json:"payLink,omitempty"`
}

type DealSummary struct {
	DealID     string `json:"dealId"`
	Name       string `json:"name"`
	ProgramFee Amount `json:"programFee"`
	Remaining  Amount `json:"remaining"`
	PortalLink string `json:"portalLink"`
}

type SelectionResponse struct {
	TsISO string        `json:"tsISO"`
	Email string        `json:"email"`
	Deals []DealSummary `json:"deals"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Outcome string `json:"outcome,omitempty"`
	Email   string `json:"email,omitempty"`
}

type HealthResponse struct {
	Ok          bool            `json:"ok"`
	TsISO       string          `json:"tsISO"`
	Service     string          `json:"service"`
	Version     string          `json:"version"`
	DataMissing []string        `json:"data_missing"`
	Env         map[string]bool `json:"env"`
	RateStore   string          `json:"rate_store"`
}
