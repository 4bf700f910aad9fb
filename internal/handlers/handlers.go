package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"dealportal/backend-go/internal/config"
	"dealportal/backend-go/internal/presenter"
	"dealportal/backend-go/internal/services"
)

type API struct {
	cfg      config.Config
	crm      *services.CRMClient
	resolver *services.Resolver
	pages    *presenter.Presenter
	rates    services.RateStore
}

func New(cfg config.Config, crm *services.CRMClient, pages *presenter.Presenter, rates services.RateStore) *API {
	return &API{
		cfg:      cfg,
		crm:      crm,
		resolver: services.NewResolver(crm),
		pages:    pages,
		rates:    rates,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

func writeHTML(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func lookupFromQuery(r *http.Request) services.Lookup {
	q := r.URL.Query()
	return services.Lookup{
		Email:  q.Get("email"),
		DealID: q.Get("dealId"),
		Origin: q.Get("origin"),
	}
}

// maskEmail keeps enough of an address to correlate logs without storing it.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
