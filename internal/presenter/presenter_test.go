package presenter

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealportal/backend-go/internal/config"
	"dealportal/backend-go/internal/models"
)

func newTestPresenter(t *testing.T) *Presenter {
	t.Helper()
	p, err := New(config.Config{
		PortalTitle:    "Test Portal",
		SupportEmail:   "help@example.com",
		CurrencySymbol: "$",
		PaymentPageURL: "https://pay.example.com/checkout?plan=std",
	})
	require.NoError(t, err)
	return p
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$600.00", FormatMoney("$", 600))
	assert.Equal(t, "$1,234.50", FormatMoney("$", 1234.5))
	assert.Equal(t, "-$50.25", FormatMoney("$", -50.25))
	assert.Equal(t, "$0.00", FormatMoney("$", -0.001))
	assert.Equal(t, Placeholder, FormatAmount("$", models.Unavailable()))
	assert.Equal(t, "€10.00", FormatAmount("€", models.Available(10)))
}

func TestPortalLinkPreservesEmailAndOrigin(t *testing.T) {
	link := PortalLink("/portal", "a+b@example.com", "https://crm.example.com/x?y=1", "42")
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/portal", u.Path)
	assert.Equal(t, "a+b@example.com", u.Query().Get("email"))
	assert.Equal(t, "https://crm.example.com/x?y=1", u.Query().Get("origin"))
	assert.Equal(t, "42", u.Query().Get("dealId"))

	assert.Equal(t, "/portal?email=a%40example.com", PortalLink("/portal", "a@example.com", "", ""))
	assert.Equal(t, "/portal", PortalLink("/portal", "", "", ""))
}

func TestPayLinkCarriesRemainingAndEmail(t *testing.T) {
	link := PayLink("https://pay.example.com/checkout?plan=std", 600, "ann@example.com")
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "pay.example.com", u.Host)
	assert.Equal(t, "600.00", u.Query().Get("amount"))
	assert.Equal(t, "ann@example.com", u.Query().Get("email"))
	assert.Equal(t, "std", u.Query().Get("plan"))

	assert.Empty(t, PayLink("", 10, "a@example.com"))
}

func TestPayLinkForOnlyWhenOwed(t *testing.T) {
	p := newTestPresenter(t)
	assert.NotEmpty(t, p.PayLinkFor(models.Ledger{Remaining: models.Available(1)}, "a@example.com"))
	assert.Empty(t, p.PayLinkFor(models.Ledger{Remaining: models.Available(0)}, "a@example.com"))
	assert.Empty(t, p.PayLinkFor(models.Ledger{Remaining: models.Unavailable()}, "a@example.com"))
}

func TestPortalPageRendersLedger(t *testing.T) {
	p := newTestPresenter(t)
	ledger := models.Ledger{
		ProgramFee: models.Available(1000),
		TotalPaid:  400,
		Remaining:  models.Available(600),
		Payments: []models.Payment{
			{Amount: 150, TransactionID: "TXN123", Date: "2024-01-05"},
			{Amount: 250},
		},
	}
	body, err := p.PortalPage(PortalView{
		Email:    "ann@example.com",
		Origin:   "https://crm.example.com/home",
		Contact:  &models.Contact{FirstName: "Ann", LastName: "Lee"},
		Deal:     models.Deal{ID: "7", Name: "Coaching <Pro>"},
		Ledger:   ledger,
		BackLink: PortalLink("/portal", "ann@example.com", "https://crm.example.com/home", ""),
		PayLink:  p.PayLinkFor(ledger, "ann@example.com"),
	})
	require.NoError(t, err)
	html := string(body)

	assert.Contains(t, html, "<title>Test Portal</title>")
	assert.Contains(t, html, "Coaching &lt;Pro&gt;")
	assert.Contains(t, html, "Ann Lee")
	assert.Contains(t, html, "$1,000.00")
	assert.Contains(t, html, "$400.00")
	assert.Contains(t, html, "$600.00")
	assert.Contains(t, html, "TXN123")
	assert.Contains(t, html, "Pay remaining balance")
	assert.Contains(t, html, "amount=600.00")
	assert.Contains(t, html, `href="https://crm.example.com/home"`)
	assert.Contains(t, html, "All programs")
	assert.Contains(t, html, "help@example.com")
}

func TestPortalPageUnavailableFee(t *testing.T) {
	p := newTestPresenter(t)
	body, err := p.PortalPage(PortalView{
		Email:  "ann@example.com",
		Deal:   models.Deal{Name: "Mystery"},
		Ledger: models.Ledger{ProgramFee: models.Unavailable(), Remaining: models.Unavailable(), Payments: []models.Payment{}},
	})
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, Placeholder)
	assert.NotContains(t, html, "Pay remaining balance")
	assert.Contains(t, html, "No payments recorded yet.")
	assert.NotContains(t, html, "All programs")
}

func TestSelectionPageLinksEachDeal(t *testing.T) {
	p := newTestPresenter(t)
	items := []SelectionItem{}
	for _, id := range []string{"1", "2", "3"} {
		items = append(items, SelectionItem{
			Deal: models.Deal{ID: id, Name: "Program " + id},
			Link: PortalLink("/portal", "ann@example.com", "o", id),
		})
	}
	body, err := p.SelectionPage(SelectionView{Email: "ann@example.com", Origin: "o", Items: items})
	require.NoError(t, err)
	html := string(body)
	assert.Equal(t, 3, strings.Count(html, ">View</a>"))
	assert.Contains(t, html, "dealId=2")
	assert.Contains(t, html, "Program 3")
}

func TestErrorPageEscapesEmailAndDropsUnsafeOrigin(t *testing.T) {
	p := newTestPresenter(t)
	body, err := p.ErrorPage(ErrorView{
		Heading: "No account found",
		Message: "We could not find an account.",
		Email:   "<script>@example.com",
		Origin:  "javascript:alert(1)",
	})
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, "&lt;script&gt;@example.com")
	assert.NotContains(t, html, "javascript:alert")
}
