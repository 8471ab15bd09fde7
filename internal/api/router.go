/**
 * @description
 * This file sets up the HTTP router for the payments-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication and role gating.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for chi.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
)

// Routes creates and returns the router for the payments service.
func Routes(h *Handlers, sessionSecret string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionAuthMiddleware(sessionSecret))

		// Endpoints available to every authenticated member.
		r.Get("/payments", h.ListPaymentsHandler)
		r.Get("/payments/{paymentID}", h.GetPaymentHandler)
		r.Post("/payments/{paymentID}/submit-reference", h.SubmitManualPaymentHandler)
		r.Post("/payments/{paymentID}/order", h.CreatePaymentOrderHandler)
		r.Post("/payments/verify", h.VerifyGatewayPaymentHandler)
		r.Get("/subscription", h.GetSubscriptionHandler)

		// Admin-only society management endpoints.
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))

			r.Post("/payments", h.CreatePaymentHandler)
			r.Put("/payments/{paymentID}", h.UpdatePaymentHandler)
			r.Delete("/payments/{paymentID}", h.DeletePaymentHandler)
			r.Post("/payments/bulk", h.BulkCreatePaymentsHandler)

			r.Get("/verifications", h.ListVerificationsHandler)
			r.Post("/verifications/{paymentID}/decide", h.DecideVerificationHandler)

			r.Post("/subscription/order", h.CreateSubscriptionOrderHandler)
			r.Post("/subscription/verify", h.VerifyGatewayPaymentHandler)

			r.Get("/finance/records", h.ListFinanceRecordsHandler)
			r.Post("/finance/records", h.CreateFinanceRecordHandler)
			r.Get("/finance/records/{recordID}", h.GetFinanceRecordHandler)
			r.Put("/finance/records/{recordID}", h.UpdateFinanceRecordHandler)
			r.Delete("/finance/records/{recordID}", h.DeleteFinanceRecordHandler)
			r.Get("/finance/summary", h.FinanceSummaryHandler)
			r.Get("/finance/timeseries", h.FinanceTimeSeriesHandler)
		})

		// Super-admin platform endpoints.
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(domain.RoleSuperAdmin))

			r.Post("/admin/subscriptions/grant", h.GrantSubscriptionHandler)
			r.Post("/admin/subscriptions/lifetime", h.ToggleLifetimeHandler)
		})
	})

	return r
}
