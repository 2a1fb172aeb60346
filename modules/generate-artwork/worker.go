package generateartwork

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"travel-art-forge-server/modules/common/cancel"
	"travel-art-forge-server/modules/common/config"
	"travel-art-forge-server/modules/common/fallback"
	"travel-art-forge-server/modules/common/model"
	commonredis "travel-art-forge-server/modules/common/redis"
	"travel-art-forge-server/modules/progress"
)

// 작업 1건당 허용 시간. 게이트웨이 생성이 가장 오래 걸리는 단계다.
const jobTimeout = 10 * time.Minute

// StartWorker - Redis 큐를 소비하는 백그라운드 워커.
// Redis나 서비스 초기화에 실패하면 워커만 내려가고 동기 API는 계속 동작한다.
func StartWorker(hub *progress.Hub) {
	cfg := config.GetConfig()

	rdb := commonredis.Connect(cfg)
	if rdb == nil {
		log.Printf("⚠️ Redis 연결 실패, 비동기 워커 비활성화")
		return
	}

	service, err := NewService()
	if err != nil {
		log.Printf("⚠️ 워커 서비스 초기화 실패, 비동기 워커 비활성화: %v", err)
		return
	}

	registry := cancel.NewRegistry(rdb)

	log.Printf("🚀 아트워크 워커 시작 (queue: %s)", ArtworkQueue)

	ctx := context.Background()
	for {
		result, err := rdb.BRPop(ctx, 0, ArtworkQueue).Result()
		if err != nil {
			log.Printf("⚠️ 큐 대기 오류, 5초 후 재시도: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		jobID := result[1]
		go processJob(service, hub, registry, jobID)
	}
}

func processJob(service *Service, hub *progress.Hub, registry *cancel.Registry, jobID string) {
	ctx, cancelCtx := context.WithTimeout(context.Background(), jobTimeout)
	defer cancelCtx()

	log.Printf("🎯 Job 처리 시작: %s", jobID)

	// 대기열에 있는 동안 취소된 Job은 실행하지 않는다
	if registry.IsCancelled(ctx, jobID) {
		log.Printf("🛑 Job %s 은 이미 취소됨, 처리 건너뜀", jobID)
		if err := service.db.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled, nil); err != nil {
			log.Printf("⚠️ Job 취소 상태 갱신 실패: %v", err)
		}
		hub.Publish(jobID, "cancelled", "")
		return
	}

	job, err := service.db.FetchJob(jobID)
	if err != nil {
		log.Printf("❌ Job 조회 실패: %s: %v", jobID, err)
		hub.Publish(jobID, StageFailed, "job not found")
		return
	}

	req, err := parseJobInput(job.JobInput)
	if err != nil {
		log.Printf("❌ Job 입력 파싱 실패: %s: %v", jobID, err)
		failJob(ctx, service, hub, jobID, err.Error())
		return
	}

	if err := service.db.UpdateJobStatus(ctx, jobID, model.StatusProcessing, nil); err != nil {
		log.Printf("⚠️ Job 상태 갱신 실패 (계속 진행): %v", err)
	}

	// 처리 중 취소 감시: 플래그 감지 시 컨텍스트를 끊어 파이프라인을 중단시킨다
	stopWatch := registry.Watch(ctx, jobID, cancelCtx)
	artwork, _, err := service.Run(ctx, req, func(stage string) {
		hub.Publish(jobID, stage, "")
	})
	stopWatch()
	if err != nil {
		if registry.IsCancelled(context.Background(), jobID) {
			log.Printf("🛑 Job %s 사용자 취소로 중단", jobID)
			if updErr := service.db.UpdateJobStatus(context.Background(), jobID, model.StatusUserCancelled, nil); updErr != nil {
				log.Printf("⚠️ Job 취소 상태 갱신 실패: %v", updErr)
			}
			hub.Publish(jobID, "cancelled", "")
			return
		}
		log.Printf("❌ Job 실패: %s: %v", jobID, err)
		failJob(ctx, service, hub, jobID, err.Error())
		return
	}

	if err := service.db.UpdateJobStatus(ctx, jobID, model.StatusCompleted, map[string]interface{}{
		"artwork_id": artwork.ID,
	}); err != nil {
		log.Printf("⚠️ Job 완료 상태 갱신 실패: %v", err)
	}

	hub.Publish(jobID, StageDone, artwork.ID)
	log.Printf("✅ Job 완료: %s (artwork: %s)", jobID, artwork.ID)
}

// parseJobInput - JSONB job_input을 관대하게 파싱한다.
// 타입이 어긋난 필드는 빈 값으로 수렴시키고 검증 단계가 거부하게 둔다.
func parseJobInput(raw json.RawMessage) (*GenerateRequest, error) {
	var input map[string]interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, err
	}

	return &GenerateRequest{
		Prompt:       fallback.SafeString(input["prompt"], ""),
		Title:        fallback.SafeString(input["title"], "Untitled Artwork"),
		PhotoURLs:    fallback.SafeStringSlice(input["photoUrls"]),
		ArtStyle:     fallback.SafeString(input["artStyle"], DefaultStyleKey),
		UserID:       fallback.SafeString(input["userId"], ""),
		CollectionID: fallback.SafeString(input["collectionId"], ""),
	}, nil
}

func failJob(ctx context.Context, service *Service, hub *progress.Hub, jobID, message string) {
	if err := service.db.UpdateJobStatus(ctx, jobID, model.StatusFailed, map[string]interface{}{
		"error_message": message,
	}); err != nil {
		log.Printf("⚠️ Job 실패 상태 갱신 실패: %v", err)
	}
	hub.Publish(jobID, StageFailed, message)
}
