package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/boxgraph/internal/models"
	"github.com/starford/boxgraph/internal/query"
)

// testEnv builds a router over a small in-memory graph.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()

	lg := models.NewLegend(models.LegendMetadata{Project: "AumCoin"}, models.Security{Phase2Pending: []string{}})
	add := func(id, path, category, desc string, deps ...string) {
		lg.Boxes.Set(id, &models.Box{
			ID:           id,
			Path:         path,
			Category:     category,
			Description:  desc,
			Interface:    models.Interface{Functions: []string{}, Classes: []string{}, Opcodes: []string{}},
			Dependencies: deps,
		})
		models.Append(lg.Categories, category, id)
		for _, d := range deps {
			models.Append(lg.Dependencies, d, id)
		}
	}
	add("MainBox", "src/main.cpp", "core-consensus", "Main entry point for the node", "util.h")
	add("UtilBox", "src/util.h", "utilities", "Logging helpers")
	add("WalletBox", "src/wallet.cpp", "wallet", "Wallet main loop", "util.h")

	idx := models.NewSearchIndex(models.SearchIndexMetadata{})
	tpl := models.NewErrorTemplates(models.TemplatesMetadata{})
	tpl.Templates.Set("MainBox", &models.ErrorTemplate{BoxID: "MainBox", RepairPrompt: "You are repairing the MainBox module."})

	return NewRouter(query.New(lg, idx, tpl), authToken != "", authToken)
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestListCategories(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/categories")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[CategoryListResponse](t, w)
	if len(resp.Categories) != 3 || resp.Categories[0].Name != "core-consensus" {
		t.Errorf("categories = %+v", resp.Categories)
	}
}

func TestGetCategory(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/categories/wallet")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[BoxListResponse](t, w)
	if resp.Total != 1 || resp.Boxes[0].ID != "WalletBox" {
		t.Errorf("resp = %+v", resp)
	}

	w = get(t, router, "/categories/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing category = %d, want 404", w.Code)
	}
	if e := decode[errResponse](t, w); len(e.Suggestions) != 3 {
		t.Errorf("suggestions = %v", e.Suggestions)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?q=main")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[SearchResponse](t, w)
	if resp.Total != 2 || resp.Results[0].ID != "MainBox" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Fallback != "" {
		t.Errorf("fallback = %q on plain search", resp.Fallback)
	}

	w = get(t, router, "/search?q=main&limit=1")
	if resp := decode[SearchResponse](t, w); resp.Total != 2 || len(resp.Results) != 1 {
		t.Errorf("limited resp = %+v", resp)
	}
}

func TestSemanticReportsFallback(t *testing.T) {
	router := testEnv(t, "")

	resp := decode[SearchResponse](t, get(t, router, "/semantic?q=wallet"))
	if resp.Fallback != "keyword" {
		t.Errorf("fallback = %q, want keyword", resp.Fallback)
	}
	if resp.Total != 1 || resp.Results[0].ID != "WalletBox" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", w.Code)
	}
}

func TestDepends(t *testing.T) {
	router := testEnv(t, "")

	resp := decode[BoxListResponse](t, get(t, router, "/depends?name=util.h"))
	if resp.Total != 2 || resp.Boxes[0].ID != "MainBox" || resp.Boxes[1].ID != "WalletBox" {
		t.Errorf("resp = %+v", resp)
	}

	w := get(t, router, "/depends?name=util")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if e := decode[errResponse](t, w); len(e.Suggestions) != 1 || e.Suggestions[0] != "util.h" {
		t.Errorf("suggestions = %v", e.Suggestions)
	}

	if w := get(t, router, "/depends"); w.Code != http.StatusBadRequest {
		t.Errorf("missing name = %d, want 400", w.Code)
	}
}

func TestGetBox(t *testing.T) {
	router := testEnv(t, "")

	box := decode[models.Box](t, get(t, router, "/boxes/UtilBox"))
	if box.Path != "src/util.h" {
		t.Errorf("box = %+v", box)
	}

	w := get(t, router, "/boxes/wallet")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if e := decode[errResponse](t, w); len(e.Suggestions) != 1 || e.Suggestions[0] != "WalletBox" {
		t.Errorf("suggestions = %v", e.Suggestions)
	}
}

func TestGetTemplate(t *testing.T) {
	router := testEnv(t, "")

	tpl := decode[models.ErrorTemplate](t, get(t, router, "/templates/MainBox"))
	if tpl.RepairPrompt != "You are repairing the MainBox module." {
		t.Errorf("template = %+v", tpl)
	}
	if w := get(t, router, "/templates/UtilBox"); w.Code != http.StatusNotFound {
		t.Errorf("missing template = %d, want 404", w.Code)
	}
}

func TestStats(t *testing.T) {
	router := testEnv(t, "")

	s := decode[Stats](t, get(t, router, "/stats"))
	if s.Boxes != 3 || s.Dependencies != 1 || s.Templates != 1 || s.Metadata.Project != "AumCoin" {
		t.Errorf("stats = %+v", s)
	}
}

func TestETagNotModified(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/stats")
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	w = get(t, router, "/stats", "If-None-Match", etag)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("304 body = %q", w.Body.String())
	}

	w = get(t, router, "/stats", "If-None-Match", `"stale"`)
	if w.Code != http.StatusOK {
		t.Errorf("stale etag = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	w := get(t, router, "/stats", "Authorization", "Bearer secret123")
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	w := get(t, router, "/stats")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	w := get(t, router, "/stats", "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/stats")
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}
