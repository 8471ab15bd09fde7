/**
 * @description
 * HTTP handlers for subscription status, gateway order creation, the checkout
 * verification callback, and super-admin grants.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/ourrapartment10-dot/payments-service/internal/domain"
)

// GetSubscriptionHandler returns the society's derived subscription status.
func (h *Handlers) GetSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status, err := h.service.GetSubscriptionStatus(r.Context(), session.SocietyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// CreateSubscriptionOrderHandler starts a subscription purchase.
func (h *Handlers) CreateSubscriptionOrderHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload domain.CreateSubscriptionOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.service.CreateSubscriptionOrder(r.Context(), session.SocietyID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// CreatePaymentOrderHandler starts an online settlement of the resident's own payment.
func (h *Handlers) CreatePaymentOrderHandler(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.service.CreatePaymentOrder(r.Context(), session.SocietyID, session.UserID, paymentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// VerifyGatewayPaymentHandler handles the checkout callback for both
// subscription and payment orders.
func (h *Handlers) VerifyGatewayPaymentHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload domain.VerifyGatewayPaymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, payment, err := h.service.VerifyGatewayPayment(r.Context(), session.SocietyID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	response := map[string]interface{}{"verified": true}
	if sub != nil {
		response["subscription"] = sub
	}
	if payment != nil {
		response["payment"] = payment
	}
	writeJSON(w, http.StatusOK, response)
}

// GrantSubscriptionHandler applies a super-admin subscription grant.
func (h *Handlers) GrantSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	var payload domain.GrantSubscriptionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.service.GrantSubscription(r.Context(), payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// ToggleLifetimeHandler flips the lifetime flag for a society.
func (h *Handlers) ToggleLifetimeHandler(w http.ResponseWriter, r *http.Request) {
	var payload domain.ToggleLifetimePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.service.ToggleLifetime(r.Context(), payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}
