package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fdg312/meal-planner/internal/storage/memory"
	"github.com/fdg312/meal-planner/internal/userctx"
)

func setupTestHandler() (*http.ServeMux, *Service) {
	svc := NewService(memory.NewRecipesMemoryStorage())
	h := NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/recipes", h.HandleCreate)
	mux.HandleFunc("GET /v1/recipes", h.HandleList)
	mux.HandleFunc("GET /v1/recipes/{id}", h.HandleGet)
	mux.HandleFunc("DELETE /v1/recipes/{id}", h.HandleDelete)
	return mux, svc
}

const validRecipe = `{
	"title": "Garlic Pasta",
	"servings": 2,
	"ingredients": [
		{"name": "Garlic", "amount": 3, "unit": "cloves", "notes": "minced"},
		{"name": "Spaghetti", "amount": 200, "unit": "g", "category": "pantry"}
	]
}`

func TestHandleCreate(t *testing.T) {
	mux, _ := setupTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/recipes", bytes.NewBufferString(validRecipe))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var recipe RecipeDTO
	if err := json.NewDecoder(rec.Body).Decode(&recipe); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, err := uuid.Parse(recipe.ID); err != nil {
		t.Fatalf("expected UUID id, got %q", recipe.ID)
	}
	if len(recipe.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(recipe.Ingredients))
	}
	if recipe.Ingredients[1].Category != "Pantry" || recipe.Ingredients[1].Position != 1 {
		t.Fatalf("unexpected second ingredient: %+v", recipe.Ingredients[1])
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	mux, _ := setupTestHandler()

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing title", `{"servings":2,"ingredients":[{"name":"Egg","amount":1,"unit":"piece"}]}`, "title"},
		{"zero servings", `{"title":"T","servings":0,"ingredients":[{"name":"Egg","amount":1,"unit":"piece"}]}`, "servings"},
		{"no ingredients", `{"title":"T","servings":1,"ingredients":[]}`, "ingredients"},
		{"zero amount", `{"title":"T","servings":1,"ingredients":[{"name":"Egg","amount":0,"unit":"piece"}]}`, "ingredients[0].amount"},
		{"missing unit", `{"title":"T","servings":1,"ingredients":[{"name":"Egg","amount":1}]}`, "ingredients[0].unit"},
		{"unknown category", `{"title":"T","servings":1,"ingredients":[{"name":"Egg","amount":1,"unit":"piece","category":"Bakery"}]}`, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/recipes", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			var resp map[string]map[string]string
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp["error"]["code"] != "invalid_request" {
				t.Fatalf("expected invalid_request, got %v", resp["error"])
			}
			if !strings.Contains(resp["error"]["message"], tt.wantMsg) {
				t.Fatalf("expected message to mention %q, got %q", tt.wantMsg, resp["error"]["message"])
			}
		})
	}
}

func TestHandleGetListDelete(t *testing.T) {
	mux, svc := setupTestHandler()
	ctx := context.Background()

	var req CreateRecipeRequest
	json.Unmarshal([]byte(validRecipe), &req)
	created, err := svc.Create(ctx, userctx.DefaultOwner, req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "other-user", req); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes", nil))
	var list ListRecipesResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Recipes) != 1 {
		t.Fatalf("expected 1 recipe for default owner, got %d", len(list.Recipes))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/recipes/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestServiceExists(t *testing.T) {
	_, svc := setupTestHandler()
	ctx := context.Background()

	var req CreateRecipeRequest
	json.Unmarshal([]byte(validRecipe), &req)
	created, _ := svc.Create(ctx, userctx.DefaultOwner, req)
	id := uuid.MustParse(created.ID)

	ok, err := svc.Exists(ctx, userctx.DefaultOwner, []uuid.UUID{id, id})
	if err != nil || !ok {
		t.Fatalf("expected recipe to exist, got %v %v", ok, err)
	}
	ok, _ = svc.Exists(ctx, userctx.DefaultOwner, []uuid.UUID{id, uuid.New()})
	if ok {
		t.Fatal("expected missing recipe to be reported")
	}
	ok, _ = svc.Exists(ctx, "other-user", []uuid.UUID{id})
	if ok {
		t.Fatal("expected recipe of another owner to be reported missing")
	}
}
