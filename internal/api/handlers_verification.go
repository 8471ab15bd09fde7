/**
 * @description
 * HTTP handlers for the admin verification queue.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/ourrapartment10-dot/payments-service/internal/domain"
)

// ListVerificationsHandler returns the society's verification queue.
func (h *Handlers) ListVerificationsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	opts := parsePaymentListOptions(r)
	payments, pagination, err := h.service.ListVerifications(r.Context(), session.SocietyID, opts)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payments":   payments,
		"pagination": pagination,
	})
}

// DecideVerificationHandler applies an admin's approve/reject decision.
func (h *Handlers) DecideVerificationHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	paymentID, err := pathUUID(r, "paymentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var payload domain.DecideVerificationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	payload.PaymentID = paymentID

	payment, err := h.service.DecideVerification(r.Context(), session.SocietyID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}
