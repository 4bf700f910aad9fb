package handlers

import (
	"net/http"

	"dealportal/backend-go/internal/models"
	"dealportal/backend-go/internal/presenter"
	"dealportal/backend-go/internal/services"
)

// Ledger is the JSON twin of Portal. Selection outcomes list the programs
// with a portal link for each.
func (a *API) Ledger(w http.ResponseWriter, r *http.Request) {
	in := lookupFromQuery(r)
	if !a.crm.Configured() {
		writeUpstreamError(w, r, &services.ConfigurationError{Setting: "CRM_ACCESS_TOKEN"}, true)
		return
	}

	out, err := a.resolver.Resolve(r.Context(), in)
	if err != nil {
		writeUpstreamError(w, r, err, true)
		return
	}

	switch out.Kind {
	case services.OutcomeMissingEmail:
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "email is required", Outcome: out.Kind.String()})
	case services.OutcomeNoAccount, services.OutcomeNoPrograms, services.OutcomeDealNotFound:
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "not found", Outcome: out.Kind.String(), Email: out.Email})
	case services.OutcomeSinglePortal:
		deal, _ := out.Deal()
		ledger := services.BuildLedger(deal)
		writeJSON(w, http.StatusOK, models.LedgerResponse{
			TsISO:   nowISO(),
			Email:   deal.ContextEmail,
			Origin:  deal.ContextOrigin,
			DealID:  deal.ID,
			Name:    deal.Name,
			Ledger:  ledger,
			PayLink: a.pages.PayLinkFor(ledger, deal.ContextEmail),
		})
	case services.OutcomeSelectionNeeded:
		summaries := make([]models.DealSummary, 0, len(out.Deals))
		for _, d := range out.Deals {
			ledger := services.BuildLedger(d)
			summaries = append(summaries, models.DealSummary{
				DealID:     d.ID,
				Name:       d.Name,
				ProgramFee: ledger.ProgramFee,
				Remaining:  ledger.Remaining,
				PortalLink: presenter.PortalLink("/portal", d.ContextEmail, d.ContextOrigin, d.ID),
			})
		}
		writeJSON(w, http.StatusOK, models.SelectionResponse{TsISO: nowISO(), Email: out.Email, Deals: summaries})
	default:
		writeUpstreamError(w, r, errUnknownOutcome(out.Kind), true)
	}
}
