package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"dealportal/backend-go/internal/presenter"
	"dealportal/backend-go/internal/services"
)

// Portal serves the payment summary page. Query: email, dealId, origin.
func (a *API) Portal(w http.ResponseWriter, r *http.Request) {
	in := lookupFromQuery(r)
	if !a.crm.Configured() {
		writeUpstreamError(w, r, &services.ConfigurationError{Setting: "CRM_ACCESS_TOKEN"}, false)
		return
	}

	out, err := a.resolver.Resolve(r.Context(), in)
	if err != nil {
		writeUpstreamError(w, r, err, false)
		return
	}
	zerolog.Ctx(r.Context()).Info().
		Str("outcome", out.Kind.String()).
		Str("email", maskEmail(out.Email)).
		Int("deals", len(out.Deals)).
		Msg("portal resolved")

	status, body, err := a.renderOutcome(r.URL.Path, in, out)
	if err != nil {
		writeUpstreamError(w, r, err, false)
		return
	}
	if body == nil {
		writeText(w, status, "Deal not found")
		return
	}
	writeHTML(w, status, body)
}

// renderOutcome returns a nil body for outcomes answered in plain text.
func (a *API) renderOutcome(path string, in services.Lookup, out services.Outcome) (int, []byte, error) {
	switch out.Kind {
	case services.OutcomeMissingEmail:
		body, err := a.pages.ErrorPage(presenter.ErrorView{
			Heading: "Email required",
			Message: "Open this page from the link in your enrollment email, or add your email address to the link.",
			Origin:  out.Origin,
		})
		return http.StatusBadRequest, body, err

	case services.OutcomeNoAccount:
		body, err := a.pages.ErrorPage(presenter.ErrorView{
			Heading: "No account found",
			Message: "We could not find an account for this email address.",
			Email:   out.Email,
			Origin:  out.Origin,
		})
		return http.StatusNotFound, body, err

	case services.OutcomeNoPrograms:
		body, err := a.pages.ErrorPage(presenter.ErrorView{
			Heading: "No programs found",
			Message: "Your account has no enrolled programs yet.",
			Email:   out.Email,
			Origin:  out.Origin,
		})
		return http.StatusNotFound, body, err

	case services.OutcomeDealNotFound:
		return http.StatusNotFound, nil, nil

	case services.OutcomeSinglePortal:
		deal, _ := out.Deal()
		ledger := services.BuildLedger(deal)
		view := presenter.PortalView{
			Email:   deal.ContextEmail,
			Origin:  deal.ContextOrigin,
			Contact: out.Contact,
			Deal:    deal,
			Ledger:  ledger,
			PayLink: a.pages.PayLinkFor(ledger, deal.ContextEmail),
		}
		// Reached from the program list: offer the way back to it.
		if in.DealID != "" && deal.ContextEmail != "" {
			view.BackLink = presenter.PortalLink(path, deal.ContextEmail, deal.ContextOrigin, "")
		}
		body, err := a.pages.PortalPage(view)
		return http.StatusOK, body, err

	case services.OutcomeSelectionNeeded:
		items := make([]presenter.SelectionItem, 0, len(out.Deals))
		for _, d := range out.Deals {
			items = append(items, presenter.SelectionItem{
				Deal:   d,
				Ledger: services.BuildLedger(d),
				Link:   presenter.PortalLink(path, d.ContextEmail, d.ContextOrigin, d.ID),
			})
		}
		body, err := a.pages.SelectionPage(presenter.SelectionView{
			Email:   out.Email,
			Origin:  out.Origin,
			Contact: out.Contact,
			Items:   items,
		})
		return http.StatusOK, body, err
	}
	return http.StatusInternalServerError, nil, errUnknownOutcome(out.Kind)
}

func errUnknownOutcome(k services.OutcomeKind) error {
	return fmt.Errorf("unhandled outcome %s", k)
}
