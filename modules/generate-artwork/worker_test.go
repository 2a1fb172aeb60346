package generateartwork

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"travel-art-forge-server/modules/common/cancel"
	"travel-art-forge-server/modules/common/database"
	"travel-art-forge-server/modules/common/model"
	"travel-art-forge-server/modules/progress"
)

func testRedis(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

func TestHandleEnqueue(t *testing.T) {
	stubs := newPipelineStubs(t)
	rdb := testRedis(t)

	db := database.NewClient()
	handler := NewEnqueueHandler(rdb, db)

	body := `{
		"title": "Queued Artwork",
		"photoUrls": ["https://example.com/a.jpg"],
		"artStyle": "anime",
		"userId": "user-1",
		"collectionId": "col-1"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate-artwork/enqueue", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleEnqueue(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp EnqueueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.JobID == "" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Queue != ArtworkQueue {
		t.Errorf("queue = %q, want %q", resp.Queue, ArtworkQueue)
	}
	if resp.QueuePosition != 1 {
		t.Errorf("queue position = %d, want 1", resp.QueuePosition)
	}

	// Job 레코드가 먼저 만들어지고 큐에도 들어가야 함
	stubs.mu.Lock()
	_, created := stubs.jobs[resp.JobID]
	stubs.mu.Unlock()
	if !created {
		t.Error("job record not created")
	}
	queued, err := rdb.LRange(context.Background(), ArtworkQueue, 0, -1).Result()
	if err != nil || len(queued) != 1 || queued[0] != resp.JobID {
		t.Errorf("queue contents = %v (err %v)", queued, err)
	}
}

func TestHandleEnqueueRejectsInvalid(t *testing.T) {
	newPipelineStubs(t)
	rdb := testRedis(t)
	handler := NewEnqueueHandler(rdb, database.NewClient())

	req := httptest.NewRequest(http.MethodPost, "/api/generate-artwork/enqueue",
		strings.NewReader(`{"photoUrls":[],"userId":"u","collectionId":"c"}`))
	rec := httptest.NewRecorder()
	handler.HandleEnqueue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if n, _ := rdb.LLen(context.Background(), ArtworkQueue).Result(); n != 0 {
		t.Errorf("queue should stay empty, has %d entries", n)
	}
}

func seedJob(t *testing.T, stubs *pipelineStubs, jobID string, req *GenerateRequest) {
	t.Helper()
	input, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	var inputMap map[string]interface{}
	json.Unmarshal(input, &inputMap)

	stubs.mu.Lock()
	stubs.jobs[jobID] = map[string]interface{}{
		"job_id":     jobID,
		"user_id":    req.UserID,
		"job_status": model.StatusQueued,
		"job_input":  inputMap,
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	stubs.mu.Unlock()
}

func TestProcessJobCompletes(t *testing.T) {
	stubs := newPipelineStubs(t)
	service := stubs.newService(t)
	rdb := testRedis(t)
	registry := cancel.NewRegistry(rdb)
	hub := progress.NewHub()

	jobID := "job-1"
	seedJob(t, stubs, jobID, &GenerateRequest{
		Title:        "Async Artwork",
		PhotoURLs:    []string{stubs.photos.URL + "/1.jpg"},
		ArtStyle:     "impressionist",
		UserID:       "user-1",
		CollectionID: "col-1",
	})

	sub := hub.Subscribe(jobID)
	processJob(service, hub, registry, jobID)

	stubs.mu.Lock()
	statuses := stubs.jobStatuses[jobID]
	stubs.mu.Unlock()

	if len(statuses) != 2 || statuses[0] != model.StatusProcessing || statuses[1] != model.StatusCompleted {
		t.Errorf("status transitions = %v, want [processing completed]", statuses)
	}

	// 허브로 단계 전이와 최종 done이 발행됐는지 확인
	var stages []string
	for {
		select {
		case update := <-sub.Send:
			stages = append(stages, update.Stage)
			if update.Stage == StageDone {
				if update.Detail != "art-123" {
					t.Errorf("done detail = %q, want artwork ID", update.Detail)
				}
				if len(stages) < 3 {
					t.Errorf("expected intermediate stages before done, got %v", stages)
				}
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("did not receive done stage, got %v", stages)
		}
	}
}

func TestProcessJobCancelledBeforeStart(t *testing.T) {
	stubs := newPipelineStubs(t)
	service := stubs.newService(t)
	rdb := testRedis(t)
	registry := cancel.NewRegistry(rdb)
	hub := progress.NewHub()

	jobID := "job-cancelled"
	seedJob(t, stubs, jobID, &GenerateRequest{
		Title:        "Never Runs",
		PhotoURLs:    []string{stubs.photos.URL + "/1.jpg"},
		ArtStyle:     "anime",
		UserID:       "user-1",
		CollectionID: "col-1",
	})

	if err := registry.MarkCancelled(context.Background(), jobID); err != nil {
		t.Fatal(err)
	}

	processJob(service, hub, registry, jobID)

	stubs.mu.Lock()
	statuses := stubs.jobStatuses[jobID]
	stubs.mu.Unlock()

	if len(statuses) != 1 || statuses[0] != model.StatusUserCancelled {
		t.Errorf("status transitions = %v, want [user_cancelled]", statuses)
	}
	if len(stubs.uploads) != 0 {
		t.Error("cancelled job must not upload anything")
	}
}

func TestParseJobInputLenient(t *testing.T) {
	raw := json.RawMessage(`{
		"title": 42,
		"photoUrls": ["https://example.com/a.jpg", 7, "https://example.com/b.jpg"],
		"artStyle": "",
		"userId": "user-1",
		"collectionId": "col-1"
	}`)

	req, err := parseJobInput(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if req.Title != "Untitled Artwork" {
		t.Errorf("non-string title should fall back, got %q", req.Title)
	}
	if req.ArtStyle != DefaultStyleKey {
		t.Errorf("empty style should fall back to %q, got %q", DefaultStyleKey, req.ArtStyle)
	}
	// 비문자열 항목은 빈 문자열로 보존되어 검증 단계에서 거부된다
	if len(req.PhotoURLs) != 3 || req.PhotoURLs[1] != "" {
		t.Errorf("photoUrls = %v", req.PhotoURLs)
	}
	if err := ValidateInput(req, 9); err == nil {
		t.Error("request with a non-string photo URL should fail validation")
	}
}
