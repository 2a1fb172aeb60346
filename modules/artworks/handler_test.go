package artworks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"travel-art-forge-server/modules/common/config"
	"travel-art-forge-server/modules/common/database"
	"travel-art-forge-server/modules/common/model"
)

type supabaseStub struct {
	rows    []map[string]interface{}
	patches []map[string]interface{}
	deletes []string
}

func setupHandler(t *testing.T, stub *supabaseStub) *Handler {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/rest/v1/generated_artworks") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(stub.rows)
		case http.MethodPatch:
			var patch map[string]interface{}
			json.NewDecoder(r.Body).Decode(&patch)
			stub.patches = append(stub.patches, patch)
			w.Write([]byte("[]"))
		case http.MethodDelete:
			stub.deletes = append(stub.deletes, strings.TrimPrefix(r.URL.Query().Get("id"), "eq."))
			w.Write([]byte("[]"))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)

	config.SetConfig(&config.Config{
		SupabaseURL:        srv.URL,
		SupabaseServiceKey: "service-key",
		StorageBucket:      "generated-artworks",
	})

	db := database.NewClient()
	if db == nil {
		t.Fatal("database client init failed")
	}
	return NewHandler(db)
}

func artworkRow(id string, createdAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":             id,
		"user_id":        "user-1",
		"collection_id":  "col-1",
		"artwork_url":    "https://cdn.example.com/" + id + ".png",
		"title":          "Artwork " + id,
		"style_settings": map[string]interface{}{"artStyle": "watercolor"},
		"prompt_used":    "analysis text",
		"is_favorite":    false,
		"created_at":     createdAt.UTC().Format(time.RFC3339),
	}
}

func TestHandleListRequiresUserID(t *testing.T) {
	handler := setupHandler(t, &supabaseStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/artworks", nil)
	rec := httptest.NewRecorder()
	handler.HandleList(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleListNewestFirst(t *testing.T) {
	now := time.Now()
	stub := &supabaseStub{rows: []map[string]interface{}{
		artworkRow("old", now.Add(-2*time.Hour)),
		artworkRow("new", now),
		artworkRow("mid", now.Add(-1*time.Hour)),
	}}
	handler := setupHandler(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/artworks?userId=user-1", nil)
	rec := httptest.NewRecorder()
	handler.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Artworks []model.GeneratedArtwork `json:"artworks"`
		Count    int                      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
	wantOrder := []string{"new", "mid", "old"}
	for i, want := range wantOrder {
		if resp.Artworks[i].ID != want {
			t.Errorf("artworks[%d].ID = %q, want %q", i, resp.Artworks[i].ID, want)
		}
	}
}

func TestHandleFavorite(t *testing.T) {
	stub := &supabaseStub{}
	handler := setupHandler(t, stub)

	router := mux.NewRouter()
	router.HandleFunc("/api/artworks/{id}/favorite", handler.HandleFavorite).Methods("POST")

	req := httptest.NewRequest(http.MethodPost, "/api/artworks/art-1/favorite",
		strings.NewReader(`{"isFavorite": true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(stub.patches) != 1 {
		t.Fatalf("patched %d times, want 1", len(stub.patches))
	}
	if stub.patches[0]["is_favorite"] != true {
		t.Errorf("patch = %v", stub.patches[0])
	}
}

func TestHandleDelete(t *testing.T) {
	stub := &supabaseStub{}
	handler := setupHandler(t, stub)

	router := mux.NewRouter()
	router.HandleFunc("/api/artworks/{id}", handler.HandleDelete).Methods("DELETE")

	req := httptest.NewRequest(http.MethodDelete, "/api/artworks/art-9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(stub.deletes) != 1 || stub.deletes[0] != "art-9" {
		t.Errorf("deletes = %v", stub.deletes)
	}
}
