package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/services"
)

// writeJSON serializes payload with the response envelope fields the
// frontends expect
func writeJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("⚠️ Failed to encode response: %v", err)
	}
}

// respondOK merges data into a success envelope
func respondOK(w http.ResponseWriter, status int, data map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range data {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// respondError maps domain errors onto HTTP statuses. Anything
// unrecognized becomes a generic 500 so internals never leak.
func respondError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   ve.Error(),
			"details": ve.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, models.ErrBookingNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrPaymentNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrBookingNotConfirmed):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, models.ErrTicketAlreadyUsed),
		errors.Is(err, models.ErrNoPaymentForBooking),
		errors.Is(err, models.ErrUnsupportedPassType),
		errors.Is(err, services.ErrSignatureMismatch):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		log.Printf("🚨 Unhandled error: %v", err)
	}

	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// decodeBody parses a JSON request body into dst
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &models.ValidationError{Message: "invalid request body"}
	}
	return nil
}
