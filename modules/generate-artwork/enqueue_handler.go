package generateartwork

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"travel-art-forge-server/modules/common/config"
	"travel-art-forge-server/modules/common/database"
	"travel-art-forge-server/modules/common/model"
)

// ArtworkQueue - Redis 작업 큐 리스트 키
const ArtworkQueue = "artwork:jobs"

// EnqueueResponse - 비동기 등록 응답
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	JobID         string `json:"job_id"`
	Queue         string `json:"queue"`
	QueuePosition int64  `json:"queuePosition"`
}

type EnqueueHandler struct {
	rdb *redis.Client
	db  *database.Client
}

func NewEnqueueHandler(rdb *redis.Client, db *database.Client) *EnqueueHandler {
	return &EnqueueHandler{rdb: rdb, db: db}
}

// HandleEnqueue - POST /api/generate-artwork/enqueue
// Job 레코드를 먼저 만들고 Redis 큐에 jobId를 넣는다.
func (h *EnqueueHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "invalid JSON body: "+err.Error())
		return
	}

	cfg := config.GetConfig()
	if err := ValidateInput(&req, cfg.MaxPhotos); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	jobID := uuid.NewString()

	jobInput, err := json.Marshal(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to enqueue job", err.Error())
		return
	}

	_, err = h.db.CreateJob(r.Context(), map[string]interface{}{
		"job_id":     jobID,
		"user_id":    req.UserID,
		"job_status": model.StatusQueued,
		"job_input":  json.RawMessage(jobInput),
	})
	if err != nil {
		log.Printf("❌ Job 레코드 생성 실패: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to enqueue job", err.Error())
		return
	}

	if err := h.rdb.LPush(r.Context(), ArtworkQueue, jobID).Err(); err != nil {
		log.Printf("❌ Redis 큐 등록 실패: %v", err)
		// Job 레코드는 남겨둔다: 워커 재시작 시 복구 대상으로 조회 가능
		writeError(w, http.StatusInternalServerError, "failed to enqueue job", err.Error())
		return
	}

	position, _ := h.rdb.LLen(r.Context(), ArtworkQueue).Result()
	log.Printf("📤 Job 등록: %s (대기열 %d번째)", jobID, position)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(EnqueueResponse{
		Success:       true,
		JobID:         jobID,
		Queue:         ArtworkQueue,
		QueuePosition: position,
	})
}
