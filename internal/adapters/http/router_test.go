package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luminacare/pipeline-service/internal/adapters/memory"
	"github.com/luminacare/pipeline-service/internal/application"
	"github.com/luminacare/pipeline-service/internal/contracts"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	repos := memory.NewRepositories()
	svc := application.NewService(application.Dependencies{
		Stages:        repos.Stages,
		Leads:         repos.Leads,
		LeadHistory:   repos.LeadHistory,
		Orders:        repos.Orders,
		Prescriptions: repos.Prescriptions,
		Approvals:     repos.Approvals,
		Affiliates:    repos.Affiliates,
		Stats:         repos.Stats,
		Outbox:        repos.Outbox,
	})
	return NewRouter(NewHandler(svc))
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer usr_tester")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, rec.Code)
		}
	}
}

func TestRouterRequiresBearerToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crm/registries/reg_1/stages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestStageLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/crm/registries/reg_1/stages",
		`{"name":"New Leads","slug":"new-leads","color":"blue"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create stage returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data contracts.StageResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Data.StageID == "" || created.Data.Position != 0 {
		t.Fatalf("unexpected created stage: %+v", created.Data)
	}

	// Duplicate slug maps to 409.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/crm/registries/reg_1/stages",
		`{"name":"Other","slug":"new-leads","color":"red"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate slug returned %d", rec.Code)
	}

	doJSON(t, router, http.MethodPost, "/api/v1/crm/registries/reg_1/stages",
		`{"name":"In Review","slug":"in-review","color":"amber"}`)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/crm/stages/"+created.Data.StageID+"/reorder",
		`{"target_index":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/crm/stages/"+created.Data.StageID+"/reorder",
		`{"target_index":9}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range reorder returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/crm/stages/"+created.Data.StageID+"/archive", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("archive returned %d", rec.Code)
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", `{"patient_id":"pat_1","total":"120.50"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data contracts.OrderResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+created.Data.OrderID+"/transition", `{"new_status":"paid"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("transition returned %d: %s", rec.Code, rec.Body.String())
	}

	// Skip-ahead maps to 409.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/orders/"+created.Data.OrderID+"/transition", `{"new_status":"delivered"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("invalid transition returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/orders/"+created.Data.OrderID+"/tracking/carrier", `{"code":"BR123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("attach tracking returned %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Data contracts.OrderResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode tracking response: %v", err)
	}
	if updated.Data.TrackingNumber != "BR123" {
		t.Fatalf("tracking number missing: %+v", updated.Data)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/orders/"+created.Data.OrderID+"/tracking/postal", `{"code":"X"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown tracking kind returned %d", rec.Code)
	}
}

func TestProgressOverHTTP(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/patients/pat_9/progress", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("progress returned %d", rec.Code)
	}
	var resp struct {
		Data contracts.ProgressResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if resp.Data.CurrentStep != 0 || len(resp.Data.Steps) != 6 {
		t.Fatalf("unexpected progress payload: %+v", resp.Data)
	}
	if resp.Data.Steps[0].State != "current" || resp.Data.Steps[1].State != "pending" {
		t.Fatalf("unexpected step states: %+v", resp.Data.Steps)
	}
}
