/**
 * @description
 * This file contains the HTTP handler functions for the payment endpoints.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate business logic in the service layer, and writing the HTTP
 * response. Error mapping from service/store sentinel errors to HTTP status
 * codes is centralized here.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ourrapartment10-dot/payments-service/internal/app"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
	"github.com/ourrapartment10-dot/payments-service/internal/store"
	"github.com/ourrapartment10-dot/payments-service/pkg/razorpay"
)

// Handlers holds the application service that handlers will interact with.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new Handlers with the given service.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, we can't send a JSON error, so just log it.
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondWithServiceError maps service and store errors to HTTP responses.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var rateErr *app.RateLimitError
	if errors.As(err, &rateErr) {
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfterSeconds))
		writeError(w, http.StatusTooManyRequests, rateErr.Error())
		return
	}

	var gatewayErr *razorpay.ErrorResponse
	if errors.As(err, &gatewayErr) {
		writeError(w, http.StatusBadGateway, "payment gateway rejected the request")
		return
	}

	switch {
	case errors.Is(err, store.ErrPaymentNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrFinanceRecordNotFound),
		errors.Is(err, store.ErrSubscriptionNotFound),
		errors.Is(err, store.ErrGatewayOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrPaymentNotEditable),
		errors.Is(err, store.ErrPaymentNotActionable),
		errors.Is(err, store.ErrGatewayOrderNotClaimable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrInvalidAmount),
		errors.Is(err, app.ErrInvalidCategory),
		errors.Is(err, app.ErrInvalidFinanceType),
		errors.Is(err, app.ErrEmptyReference),
		errors.Is(err, app.ErrInvalidAction),
		errors.Is(err, app.ErrInvalidGrant),
		errors.Is(err, app.ErrInvalidGrantDays),
		errors.Is(err, app.ErrMissingSociety),
		errors.Is(err, app.ErrUnsupportedPlan),
		errors.Is(err, app.ErrSignatureMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrTargetNotResident),
		errors.Is(err, app.ErrNoBillingTargets),
		errors.Is(err, app.ErrTooManyTargets),
		errors.Is(err, app.ErrFlatCountTooLow),
		errors.Is(err, app.ErrTrialAlreadyUsed),
		errors.Is(err, app.ErrPaymentNotPayable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, app.ErrPaymentNotOwned),
		errors.Is(err, app.ErrOrderSocietyMismatch):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseDateParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t
	}
	return nil
}

func parsePaymentListOptions(r *http.Request) domain.PaymentListOptions {
	q := r.URL.Query()
	opts := domain.PaymentListOptions{
		Status:    q.Get("status"),
		Category:  q.Get("category"),
		StartDate: parseDateParam(q.Get("start_date")),
		EndDate:   parseDateParam(q.Get("end_date")),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = limit
	}
	if userStr := q.Get("user_id"); userStr != "" {
		if userID, err := uuid.Parse(userStr); err == nil {
			opts.UserID = &userID
		}
	}
	return opts
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// ListPaymentsHandler returns payments visible to the caller. Residents only
// ever see their own; admins see the whole society and may filter by user.
func (h *Handlers) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	opts := parsePaymentListOptions(r)
	if !session.IsAdmin() {
		opts.UserID = &session.UserID
	}

	payments, pagination, stats, err := h.service.ListPayments(r.Context(), session.SocietyID, opts)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payments":   payments,
		"pagination": pagination,
		"statistics": stats,
	})
}

// GetPaymentHandler returns a single payment.
func (h *Handlers) GetPaymentHandler(w http.ResponseWriter, r *http.Request) {
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

	payment, err := h.service.GetPayment(r.Context(), paymentID, session.SocietyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if !session.IsAdmin() && payment.UserID != session.UserID {
		writeError(w, http.StatusNotFound, store.ErrPaymentNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// CreatePaymentHandler creates a single payment against a resident.
func (h *Handlers) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload domain.CreatePaymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payment, err := h.service.CreatePayment(r.Context(), session.SocietyID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

// UpdatePaymentHandler applies a partial edit to a payment.
func (h *Handlers) UpdatePaymentHandler(w http.ResponseWriter, r *http.Request) {
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

	var payload domain.UpdatePaymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payment, err := h.service.UpdatePayment(r.Context(), paymentID, session.SocietyID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// DeletePaymentHandler removes a payment unless it has been completed.
func (h *Handlers) DeletePaymentHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeletePayment(r.Context(), paymentID, session.SocietyID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkCreatePaymentsHandler bills a set of residents in one request.
func (h *Handlers) BulkCreatePaymentsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload domain.BulkCreatePaymentsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.BulkCreatePayments(r.Context(), session.SocietyID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// SubmitManualPaymentHandler records a resident's proof-of-payment reference.
func (h *Handlers) SubmitManualPaymentHandler(w http.ResponseWriter, r *http.Request) {
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

	var payload domain.SubmitReferencePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payment, err := h.service.SubmitManualPayment(r.Context(), session.UserID, paymentID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}
