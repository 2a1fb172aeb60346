package jobs

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"travel-art-forge-server/modules/common/cancel"
	"travel-art-forge-server/modules/common/database"
	"travel-art-forge-server/modules/common/model"
)

type Handler struct {
	db       *database.Client
	registry *cancel.Registry
}

// NewHandler - registry는 Redis가 없으면 nil일 수 있다 (취소 엔드포인트 비활성화)
func NewHandler(db *database.Client, registry *cancel.Registry) *Handler {
	return &Handler{db: db, registry: registry}
}

// HandleGetJob - GET /api/jobs/{jobId}
// 비동기 생성 Job의 상태 폴링용.
func (h *Handler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	jobID := mux.Vars(r)["jobId"]

	job, err := h.db.FetchJob(jobID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "job not found"})
			return
		}
		log.Printf("❌ Job 조회 실패: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to fetch job"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// HandleCancel - POST /api/jobs/{jobId}/cancel
// 취소 플래그를 기록한다. 실제 중단은 워커가 플래그를 보고 수행한다.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.registry == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "job cancellation is unavailable"})
		return
	}

	jobID := mux.Vars(r)["jobId"]

	job, err := h.db.FetchJob(jobID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "job not found"})
		return
	}

	if job.JobStatus == model.StatusCompleted || job.JobStatus == model.StatusFailed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "job already finished: " + job.JobStatus})
		return
	}

	if err := h.registry.MarkCancelled(r.Context(), jobID); err != nil {
		log.Printf("❌ Job 취소 플래그 기록 실패: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to cancel job"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"job_id":  jobID,
	})
}
