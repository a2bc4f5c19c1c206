package api

import (
	"errors"
	"net/http"
	"time"

	"koomy/portal/internal/common"
	"koomy/portal/internal/constants"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/providers"
	"koomy/portal/internal/services"
)

// handleServiceError maps service and upstream failures onto the response
// envelope
func handleServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	if ue, ok := services.AsUploadError(err); ok {
		status := http.StatusBadGateway
		if ue.IsValidation() {
			status = http.StatusBadRequest
		}
		common.RespondCode(w, initTime, ue.Code, ue.Message, status)
		return
	}

	if pe, ok := providers.AsProviderError(err); ok {
		common.RespondCode(w, initTime, pe.Code, pe.Message, pe.HTTPStatus())
		return
	}

	if errors.Is(err, services.ErrNoSession) {
		common.RespondCode(w, initTime, constants.ErrCodeNoSession, "", http.StatusUnauthorized)
		return
	}

	logging.Error("Unhandled service error", "error", err)
	common.RespondError(w, initTime, nil, "Internal error", http.StatusInternalServerError)
}

func respondValidation(w http.ResponseWriter, initTime time.Time, message string) {
	common.RespondCode(w, initTime, constants.ErrCodeValidation, message, http.StatusBadRequest)
}
