// Package presenter renders portal pages from resolved domain data. It never
// sees CRM wire shapes, only models.Contact, models.Deal and models.Ledger.
package presenter

import (
	"bytes"
	"embed"
	"html/template"

	"dealportal/backend-go/internal/config"
	"dealportal/backend-go/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type Presenter struct {
	title          string
	supportEmail   string
	currencySymbol string
	paymentURL     string
	tmpl           *template.Template
}

type ErrorView struct {
	Heading string
	Message string
	Email   string
	Origin  string
}

type SelectionItem struct {
	Deal   models.Deal
	Ledger models.Ledger
	Link   string
}

type SelectionView struct {
	Email   string
	Origin  string
	Contact *models.Contact
	Items   []SelectionItem
}

type PortalView struct {
	Email   string
	Origin  string
	Contact *models.Contact
	Deal    models.Deal
	Ledger  models.Ledger
	// BackLink leads to the program list; empty when there is none.
	BackLink string
	PayLink  string
}

func New(cfg config.Config) (*Presenter, error) {
	p := &Presenter{
		title:          cfg.PortalTitle,
		supportEmail:   cfg.SupportEmail,
		currencySymbol: cfg.CurrencySymbol,
		paymentURL:     cfg.PaymentPageURL,
	}
	funcs := template.FuncMap{
		"money":  func(v float64) string { return FormatMoney(p.currencySymbol, v) },
		"amount": func(a models.Amount) string { return FormatAmount(p.currencySymbol, a) },
		"dash":   dash,
	}
	tmpl, err := template.New("portal").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	p.tmpl = tmpl
	return p, nil
}

// PayLinkFor returns the external payment link for a ledger, or "" when
// nothing is owed or the balance is unknown.
func (p *Presenter) PayLinkFor(l models.Ledger, email string) string {
	if !Payable(l) {
		return ""
	}
	return PayLink(p.paymentURL, l.Remaining.Value, email)
}

func (p *Presenter) ErrorPage(v ErrorView) ([]byte, error) {
	return p.render("error.html", v)
}

func (p *Presenter) SelectionPage(v SelectionView) ([]byte, error) {
	return p.render("selection.html", v)
}

func (p *Presenter) PortalPage(v PortalView) ([]byte, error) {
	return p.render("portal.html", v)
}

type layout struct {
	Title        string
	SupportEmail string
	Page         any
}

func (p *Presenter) render(name string, page any) ([]byte, error) {
	var buf bytes.Buffer
	err := p.tmpl.ExecuteTemplate(&buf, name, layout{
		Title:        p.title,
		SupportEmail: p.supportEmail,
		Page:         page,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
