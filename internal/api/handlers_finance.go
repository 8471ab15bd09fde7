/**
 * @description
 * HTTP handlers for the community finance ledger and its reporting endpoints.
 */

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ourrapartment10-dot/payments-service/internal/domain"
)

func parseFinanceListOptions(r *http.Request) domain.FinanceListOptions {
	q := r.URL.Query()
	opts := domain.FinanceListOptions{
		Type:      q.Get("type"),
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
	return opts
}

// ListFinanceRecordsHandler returns a page of ledger entries.
func (h *Handlers) ListFinanceRecordsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, pagination, err := h.service.ListFinanceRecords(r.Context(), session.SocietyID, parseFinanceListOptions(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records":    records,
		"pagination": pagination,
	})
}

// CreateFinanceRecordHandler adds a ledger entry.
func (h *Handlers) CreateFinanceRecordHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload domain.CreateFinanceRecordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.service.CreateFinanceRecord(r.Context(), session.SocietyID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// GetFinanceRecordHandler returns a single ledger entry.
func (h *Handlers) GetFinanceRecordHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	recordID, err := pathUUID(r, "recordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	rec, err := h.service.GetFinanceRecord(r.Context(), recordID, session.SocietyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// UpdateFinanceRecordHandler applies a partial edit to a ledger entry.
func (h *Handlers) UpdateFinanceRecordHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	recordID, err := pathUUID(r, "recordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var payload domain.UpdateFinanceRecordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.service.UpdateFinanceRecord(r.Context(), recordID, session.SocietyID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// DeleteFinanceRecordHandler removes a ledger entry.
func (h *Handlers) DeleteFinanceRecordHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	recordID, err := pathUUID(r, "recordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := h.service.DeleteFinanceRecord(r.Context(), recordID, session.SocietyID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FinanceSummaryHandler returns income/expense totals for a window.
func (h *Handlers) FinanceSummaryHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	summary, err := h.service.SummarizeFinance(r.Context(), session.SocietyID,
		parseDateParam(q.Get("start_date")), parseDateParam(q.Get("end_date")))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// FinanceTimeSeriesHandler returns a dense income/expense series for charts.
func (h *Handlers) FinanceTimeSeriesHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	series, err := h.service.FinanceTimeSeries(r.Context(), session.SocietyID,
		parseDateParam(q.Get("start_date")), parseDateParam(q.Get("end_date")))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"series": series})
}
