package inventory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/fdg312/meal-planner/internal/storage/memory"
)

func setupTestHandler() *http.ServeMux {
	h := NewHandler(NewService(memory.NewInventoryMemoryStorage()))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/inventory", h.HandleList)
	mux.HandleFunc("PUT /v1/inventory", h.HandleUpsert)
	mux.HandleFunc("DELETE /v1/inventory/{id}", h.HandleDelete)
	return mux
}

func put(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/v1/inventory", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func list(t *testing.T, mux *http.ServeMux) []ItemDTO {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/inventory", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp ListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Items
}

func TestHandleUpsert_ReplacesByName(t *testing.T) {
	mux := setupTestHandler()

	rec := put(mux, `{"items":[{"name":"Milk","quantity":16,"unit":"tbsp"},{"name":"Eggs","quantity":6,"unit":"piece"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = put(mux, `{"items":[{"name":"milk","quantity":1,"unit":"cup"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	items := list(t, mux)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Name != "milk" || items[1].Quantity != 1 || items[1].Unit != "cup" {
		t.Fatalf("expected milk replaced, got %+v", items[1])
	}
}

func TestHandleUpsert_Validation(t *testing.T) {
	mux := setupTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"empty items", `{"items":[]}`},
		{"negative quantity", `{"items":[{"name":"Milk","quantity":-1,"unit":"cup"}]}`},
		{"blank name", `{"items":[{"name":"   ","quantity":1}]}`},
		{"duplicate names", `{"items":[{"name":"Milk","quantity":1},{"name":"MILK","quantity":2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := put(mux, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}

	if items := list(t, mux); len(items) != 0 {
		t.Fatalf("expected no items stored, got %d", len(items))
	}
}

func TestHandleDelete(t *testing.T) {
	mux := setupTestHandler()
	put(mux, `{"items":[{"name":"Rice","quantity":2,"unit":"cup"}]}`)
	items := list(t, mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/inventory/"+items[0].ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/inventory/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
