package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/dedup"
	"papertrader/src/ledger"
	"papertrader/src/risk"
	"papertrader/src/venue"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrDuplicatePosition),
		errors.Is(err, dedup.ErrDuplicateSignal),
		errors.Is(err, ledger.ErrTradingPaused),
		errors.Is(err, ledger.ErrAutoExecutionDisabled),
		errors.Is(err, ledger.ErrLevelAlreadyTriggered):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrPositionNotFound):
		return http.StatusNotFound
	case errors.Is(err, risk.ErrInvalidParameter),
		errors.Is(err, risk.ErrInsufficientBalance),
		errors.Is(err, risk.ErrSafetyCheckFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, venue.ErrPriceUnavailable),
		errors.Is(err, ledger.ErrPersistenceWriteFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		writeError(w, status, "Internal Server Error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
