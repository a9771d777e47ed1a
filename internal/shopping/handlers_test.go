package shopping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/meal-planner/internal/userctx"
)

func setupTestMux(t *testing.T) (*http.ServeMux, *fixture) {
	t.Helper()
	f := newFixture(t)
	h := NewHandler(f.service, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/shopping/list", h.HandleGetList)
	mux.HandleFunc("POST /v1/shopping/selection/toggle", h.HandleToggle)
	mux.HandleFunc("PUT /v1/shopping/overrides", h.HandleOverride)
	mux.HandleFunc("DELETE /v1/shopping/session", h.HandleClearSession)
	mux.HandleFunc("POST /v1/shopping/export", h.HandleExport)
	mux.HandleFunc("POST /v1/shopping/share/email", h.HandleShareEmail)
	mux.HandleFunc("POST /v1/shopping/share/sms", h.HandleShareSMS)
	return mux, f
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error.Code
}

func TestHandleGetList(t *testing.T) {
	mux, f := setupTestMux(t)
	f.seedWeek(t)

	rec := do(mux, http.MethodGet, "/v1/shopping/list?from=2026-03-02&to=2026-03-08", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalItems != 3 {
		t.Fatalf("expected 3 items, got %d", resp.TotalItems)
	}
	if len(resp.Sections) == 0 || resp.Sections[0].Name != SectionProduce {
		t.Fatalf("expected Produce first, got %+v", resp.Sections)
	}
	if resp.Session == nil || len(resp.Session.Keys) != 3 {
		t.Fatalf("expected session with 3 keys, got %+v", resp.Session)
	}
}

func TestHandleGetList_Empty(t *testing.T) {
	mux, _ := setupTestMux(t)

	rec := do(mux, http.MethodGet, "/v1/shopping/list", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["no_ingredients_needed"] != true {
		t.Fatalf("expected no_ingredients_needed=true, got %v", resp["no_ingredients_needed"])
	}
	if sections, ok := resp["sections"].([]any); !ok || len(sections) != 0 {
		t.Fatalf("expected empty sections array, got %v", resp["sections"])
	}
}

func TestHandleGetList_BadRange(t *testing.T) {
	mux, _ := setupTestMux(t)

	tests := []struct {
		name  string
		query string
	}{
		{"bad date", "?from=yesterday"},
		{"reversed", "?from=2026-03-09&to=2026-03-01"},
		{"too long", "?from=2026-01-01&to=2026-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(mux, http.MethodGet, "/v1/shopping/list"+tt.query, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if code := errorCode(t, rec); code != "invalid_request" {
				t.Fatalf("expected invalid_request, got %s", code)
			}
		})
	}
}

func TestHandleToggleAndOverride(t *testing.T) {
	mux, f := setupTestMux(t)
	f.seedWeek(t)

	if rec := do(mux, http.MethodGet, "/v1/shopping/list", ""); rec.Code != http.StatusOK {
		t.Fatalf("generate failed: %d", rec.Code)
	}

	rec := do(mux, http.MethodPost, "/v1/shopping/selection/toggle", `{"item_id":"garlic-clove"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var toggled ToggleResponse
	json.NewDecoder(rec.Body).Decode(&toggled)
	if !toggled.Selected {
		t.Fatal("expected item to be selected")
	}

	rec = do(mux, http.MethodPost, "/v1/shopping/selection/toggle", `{"item_id":"caviar-jar"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	rec = do(mux, http.MethodPut, "/v1/shopping/overrides", `{"item_id":"garlic-clove","quantity":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	rec = do(mux, http.MethodPut, "/v1/shopping/overrides", `{"item_id":"garlic-clove","quantity":12,"notes":"peeled"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(mux, http.MethodPut, "/v1/shopping/overrides", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_payload" {
		t.Fatalf("expected invalid_payload, got %s", code)
	}

	rec = do(mux, http.MethodDelete, "/v1/shopping/session", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}

func TestHandleExport(t *testing.T) {
	mux, f := setupTestMux(t)

	rec := do(mux, http.MethodPost, "/v1/shopping/export", `{"format":"pdf"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 for empty list, got %d", rec.Code)
	}

	f.seedWeek(t)
	rec = do(mux, http.MethodPost, "/v1/shopping/export", `{"format":"docx"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown format, got %d", rec.Code)
	}

	rec = do(mux, http.MethodPost, "/v1/shopping/export", `{"format":"pdf"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var result ExportResult
	json.NewDecoder(rec.Body).Decode(&result)
	if result.ItemCount != 3 {
		t.Fatalf("expected 3 items exported, got %d", result.ItemCount)
	}
	if f.publisher.exports[0].BaseURL != "http://example.com" {
		t.Fatalf("unexpected base URL %q", f.publisher.exports[0].BaseURL)
	}
}

func TestHandleShare_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"busy", ErrChannelBusy, http.StatusConflict, "channel_busy"},
		{"failed", fmt.Errorf("%w: gateway returned 503", ErrDeliveryFailed), http.StatusBadGateway, "delivery_failed"},
		{"too many", ErrTooManyItems, http.StatusUnprocessableEntity, "nothing_to_send"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, f := setupTestMux(t)
			f.seedWeek(t)
			f.publisher.err = tt.err

			rec := do(mux, http.MethodPost, "/v1/shopping/share/sms", `{"phone":"+14155552671"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Fatalf("expected %s, got %s", tt.wantCode, code)
			}
		})
	}
}

func TestHandleShareEmail_UsesAuthenticatedOwner(t *testing.T) {
	mux, f := setupTestMux(t)
	f.seedWeek(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/shopping/share/email", bytes.NewBufferString(`{"address":"cook@example.com"}`))
	req = req.WithContext(userctx.WithUserID(req.Context(), "someone-else"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// someone-else has no plan
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(mux, http.MethodPost, "/v1/shopping/share/email", `{"address":"cook@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.publisher.emails) != 1 || f.publisher.emails[0].OwnerUserID != testOwner {
		t.Fatalf("unexpected email requests: %+v", f.publisher.emails)
	}
}
