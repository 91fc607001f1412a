package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/luminacare/pipeline-service/internal/application"
	"github.com/luminacare/pipeline-service/internal/contracts"
	"github.com/luminacare/pipeline-service/internal/domain"
)

type Handler struct{ service *application.Service }

func NewHandler(service *application.Service) *Handler { return &Handler{service: service} }

func (h *Handler) createStage(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body")
		return
	}
	row, err := h.service.CreateStage(r.Context(), actorFromContext(r.Context()), application.CreateStageInput{
		RegistryID: chi.URLParam(r, "registry_id"), Name: req.Name, Slug: req.Slug, Description: req.Description, Color: req.Color,
	})
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusCreated, toStageResponse(row))
}

func (h *Handler) listStages(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListStages(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "registry_id"))
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	items := make([]contracts.StageResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toStageResponse(row))
	}
	writeSuccess(w, http.StatusOK, contracts.StageListResponse{Items: items})
}

func (h *Handler) reorderStage(w http.ResponseWriter, r *http.Request) {
	var req contracts.ReorderStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body")
		return
	}
	changes, err := h.service.ReorderStage(r.Context(), actorFromContext(r.Context()), application.ReorderStageInput{
		StageID: chi.URLParam(r, "stage_id"), TargetIndex: req.TargetIndex,
	})
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	out := make([]contracts.PositionChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, contracts.PositionChangeResponse{StageID: c.StageID, NewPosition: c.NewPosition})
	}
	writeSuccess(w, http.StatusOK, contracts.ReorderStageResponse{Changes: out})
}

func (h *Handler) archiveStage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ArchiveStage(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "stage_id")); err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (h *Handler) createLead(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body")
		return
	}
	row, err := h.service.CreateLead(r.Context(), actorFromContext(r.Context()), application.CreateLeadInput{
		RegistryID: req.RegistryID, Name: req.Name, StageID: req.StageID,
		EstimatedValue: req.EstimatedValue, AssignedAffiliateID: req.AssignedAffiliateID,
	})
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusCreated, toLeadResponse(row))
}

func (h *Handler) moveLead(w http.ResponseWriter, r *http.Request) {
	var req contracts.MoveLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body")
		return
	}
	row, err := h.service.MoveLeadToStage(r.Context(), actorFromContext(r.Context()), application.MoveLeadInput{
		LeadID: chi.URLParam(r, "lead_id"), StageID: req.StageID,
	})
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, toLeadResponse(row))
}

func (h *Handler) advanceLead(w http.ResponseWriter, r *http.Request) {
	row, err := h.service.AdvanceLeadStatus(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "lead_id"))
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, toLeadResponse(row))
}

func (h *Handler) regressLead(w http.ResponseWriter, r *http.Request) {
	row, err := h.service.RegressLeadStatus(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "lead_id"))
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, toLeadResponse(row))
}

func (h *Handler) leadHistory(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "lead_id")
	rows, err := h.service.GetLeadHistory(r.Context(), actorFromContext(r.Context()), leadID)
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	items := make([]contracts.LeadStageChangeResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, contracts.LeadStageChangeResponse{
			ChangeID: row.ChangeID, FromStageID: row.FromStageID, ToStageID: row.ToStageID,
			FromStatus: row.FromStatus, ToStatus: row.ToStatus, ChangedBy: row.ChangedBy,
			ChangedAt: row.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	writeSuccess(w, http.StatusOK, contracts.LeadHistoryResponse{LeadID: leadID, Items: items})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body")
		return
	}
	row, err := h.service.CreateOrder(r.Context(), actorFromContext(r.Context()), application.CreateOrderInput{
		PatientID: req.PatientID, Total: req.Total,
	})
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusCreated, toOrderResponse(row))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	row, err := h.service.GetOrder(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "order_id"))
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, toOrderResponse(row))
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request) {
	var req contracts.TransitionOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body")
		return
	}
	row, err := h.service.TransitionOrder(r.Context(), actorFromContext(r.Context()), application.TransitionOrderInput{
		OrderID: chi.URLParam(r, "order_id"), NewStatus: req.NewStatus,
	})
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, toOrderResponse(row))
}

func (h *Handler) attachTracking(w http.ResponseWriter, r *http.Request) {
	var req contracts.AttachTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body")
		return
	}
	row, err := h.service.AttachTracking(r.Context(), actorFromContext(r.Context()), application.AttachTrackingInput{
		OrderID: chi.URLParam(r, "order_id"), Kind: chi.URLParam(r, "kind"), Code: req.Code,
	})
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, toOrderResponse(row))
}

func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetPatientProgress(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "patient_id"))
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	steps := make([]contracts.ProgressStepResponse, 0, len(view.Steps))
	for _, s := range view.Steps {
		steps = append(steps, contracts.ProgressStepResponse{Index: int(s.Step), Label: s.Label, State: string(s.State)})
	}
	writeSuccess(w, http.StatusOK, contracts.ProgressResponse{
		PatientID:   view.PatientID,
		CurrentStep: int(view.CurrentStep),
		Steps:       steps,
	})
}

func (h *Handler) getAffiliateMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.ComputeAffiliateMetrics(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "affiliate_id"), windowParam(r))
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, toMetricsResponse(m))
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	window := windowParam(r)
	rows, err := h.service.GetLeaderboard(r.Context(), actorFromContext(r.Context()), window)
	if err != nil {
		code, c := mapDomainError(err)
		writeError(w, code, c, err.Error())
		return
	}
	items := make([]contracts.AffiliateMetricsResponse, 0, len(rows))
	for _, m := range rows {
		items = append(items, toMetricsResponse(m))
	}
	writeSuccess(w, http.StatusOK, contracts.LeaderboardResponse{Window: r.URL.Query().Get("window"), Items: items})
}

func windowParam(r *http.Request) time.Duration {
	raw := strings.TrimSuffix(strings.TrimSpace(r.URL.Query().Get("window")), "h")
	if raw == "" {
		return 0
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}

func toStageResponse(row domain.Stage) contracts.StageResponse {
	return contracts.StageResponse{
		StageID: row.StageID, RegistryID: row.RegistryID, Name: row.Name, Slug: row.Slug,
		Description: row.Description, Color: row.Color, Position: row.Position, Active: row.Active,
	}
}

func toLeadResponse(row domain.Lead) contracts.LeadResponse {
	out := contracts.LeadResponse{
		LeadID: row.LeadID, RegistryID: row.RegistryID, StageID: row.StageID,
		Status: string(row.Status), Name: row.Name, AssignedAffiliateID: row.AssignedAffiliateID,
	}
	if row.EstimatedValue != nil {
		out.EstimatedValue = row.EstimatedValue.StringFixed(2)
	}
	return out
}

func toOrderResponse(row domain.Order) contracts.OrderResponse {
	return contracts.OrderResponse{
		OrderID: row.OrderID, PatientID: row.PatientID, Status: string(row.Status),
		TrackingNumber: row.TrackingNumber, RegulatoryTrackingCode: row.RegulatoryTrackingCode,
		ImportTrackingCode: row.ImportTrackingCode, UpdatedAt: row.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toMetricsResponse(m domain.AffiliateMetrics) contracts.AffiliateMetricsResponse {
	return contracts.AffiliateMetricsResponse{
		AffiliateID:     m.AffiliateID,
		Clicks:          m.Clicks,
		Registrations:   m.Registrations,
		Purchases:       m.Purchases,
		TotalRevenue:    m.TotalRevenue.StringFixed(2),
		TotalCommission: m.TotalCommission.StringFixed(2),
		ConversionRate:  m.ConversionRate.StringFixed(1),
	}
}
