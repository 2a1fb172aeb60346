package artworks

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"travel-art-forge-server/modules/common/database"
)

type Handler struct {
	db *database.Client
}

func NewHandler(db *database.Client) *Handler {
	return &Handler{db: db}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
}

// HandleList - GET /api/artworks?userId=&collectionId=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}
	collectionID := r.URL.Query().Get("collectionId")

	artworks, err := h.db.ListArtworks(userID, collectionID)
	if err != nil {
		log.Printf("❌ 아트워크 목록 조회 실패: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list artworks")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"artworks": artworks,
		"count":    len(artworks),
	})
}

// HandleFavorite - POST /api/artworks/{id}/favorite
func (h *Handler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	artworkID := mux.Vars(r)["id"]

	var body struct {
		IsFavorite bool `json:"isFavorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.db.SetFavorite(r.Context(), artworkID, body.IsFavorite); err != nil {
		log.Printf("❌ 즐겨찾기 갱신 실패: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to update favorite")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"id":          artworkID,
		"is_favorite": body.IsFavorite,
	})
}

// HandleDelete - DELETE /api/artworks/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	artworkID := mux.Vars(r)["id"]

	if err := h.db.DeleteArtwork(r.Context(), artworkID); err != nil {
		log.Printf("❌ 아트워크 삭제 실패: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to delete artwork")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"id":      artworkID,
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
