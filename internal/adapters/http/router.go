package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Route("/crm", func(r chi.Router) {
			r.Post("/registries/{registry_id}/stages", handler.createStage)
			r.Get("/registries/{registry_id}/stages", handler.listStages)
			r.Post("/stages/{stage_id}/reorder", handler.reorderStage)
			r.Post("/stages/{stage_id}/archive", handler.archiveStage)

			r.Post("/leads", handler.createLead)
			r.Post("/leads/{lead_id}/move", handler.moveLead)
			r.Post("/leads/{lead_id}/advance", handler.advanceLead)
			r.Post("/leads/{lead_id}/regress", handler.regressLead)
			r.Get("/leads/{lead_id}/history", handler.leadHistory)
		})

		r.Post("/orders", handler.createOrder)
		r.Get("/orders/{order_id}", handler.getOrder)
		r.Post("/orders/{order_id}/transition", handler.transitionOrder)
		r.Put("/orders/{order_id}/tracking/{kind}", handler.attachTracking)

		r.Get("/patients/{patient_id}/progress", handler.getProgress)

		r.Get("/affiliates/leaderboard", handler.getLeaderboard)
		r.Get("/affiliates/{affiliate_id}/metrics", handler.getAffiliateMetrics)
	})

	return r
}
