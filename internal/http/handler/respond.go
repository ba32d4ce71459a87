package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledgerpro/internal/ledger"
)

// validate is shared across handlers; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeDomainError maps domain sentinels to HTTP statuses and reports whether
// it handled the error. Unrecognized errors fall through to the caller's 500.
func writeDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, ledger.ErrDuplicateUser):
		writeMessage(w, http.StatusConflict, "Username or email already exists")
	case errors.Is(err, ledger.ErrInvalidStatus):
		writeMessage(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, ledger.ErrStatusSettled):
		writeMessage(w, http.StatusBadRequest, "Receipt already settled")
	case errors.Is(err, ledger.ErrUnknownCreator):
		writeMessage(w, http.StatusBadRequest, "User not found for provided firebaseUid")
	case errors.Is(err, ledger.ErrBadRange):
		writeMessage(w, http.StatusBadRequest, "Invalid export range")
	default:
		return false
	}
	return true
}

func serverError(log *logrus.Logger, w http.ResponseWriter, err error, context string) {
	log.WithError(err).Error(context)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

// parseAmount accepts a JSON number or numeric string and keeps it exact.
func parseAmount(raw json.Number) (decimal.Decimal, error) {
	return decimal.NewFromString(raw.String())
}
