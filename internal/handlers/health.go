package handlers

import (
	"net/http"
	"os"

	"dealportal/backend-go/internal/models"
)

// Health reports the loaded configuration, whether it came from the
// environment or the config file. It does not call the CRM.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	missing := []string{}
	if !a.crm.Configured() {
		missing = append(missing, "crm_access_token")
	}
	if a.cfg.PaymentPageURL == "" {
		missing = append(missing, "payment_page_url")
	}
	backend := "none"
	if a.rates != nil {
		backend = a.rates.Backend()
	}

	resp := models.HealthResponse{
		Ok:          len(missing) == 0,
		TsISO:       nowISO(),
		Service:     "dealportal",
		Version:     os.Getenv("SERVICE_VERSION"),
		DataMissing: missing,
		Env: map[string]bool{
			"CRM_ACCESS_TOKEN":   a.crm.Configured(),
			"CRM_BASE_URL":       a.cfg.CRMBaseURL != "",
			"PAYMENT_PAGE_URL":   a.cfg.PaymentPageURL != "",
			"REDIS_URL":          a.cfg.RedisURL != "",
			"PORTAL_CONFIG_FILE": os.Getenv("PORTAL_CONFIG_FILE") != "",
		},
		RateStore: backend,
	}
	status := http.StatusOK
	if !resp.Ok {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
