package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"dealportal/backend-go/internal/models"
	"dealportal/backend-go/internal/services"
)

const unexpectedError = "Unexpected error"

// writeUpstreamError logs the failure in full and answers with a 500 that
// carries no upstream detail.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error, asJSON bool) {
	logger := zerolog.Ctx(r.Context())

	var cfgErr *services.ConfigurationError
	if errors.As(err, &cfgErr) {
		logger.Error().Str("setting", cfgErr.Setting).Msg("portal misconfigured")
		msg := "Configuration error: " + cfgErr.Setting + " is not set"
		if asJSON {
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: msg})
			return
		}
		writeText(w, http.StatusInternalServerError, msg)
		return
	}

	var upErr *services.UpstreamError
	if errors.As(err, &upErr) {
		logger.Error().
			Str("op", upErr.Op).
			Int("upstream_status", upErr.Status).
			Str("upstream_body", upErr.Body).
			Msg("crm request failed")
	} else {
		logger.Error().Err(err).Msg("portal request failed")
	}
	if asJSON {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: unexpectedError})
		return
	}
	writeText(w, http.StatusInternalServerError, unexpectedError)
}
