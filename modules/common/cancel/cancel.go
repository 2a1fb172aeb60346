package cancel

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// 취소 플래그의 보존 시간. Job 타임아웃보다 길게 잡는다.
const flagTTL = 24 * time.Hour

// Registry - Redis 기반 Job 취소 플래그.
// API 프로세스와 워커가 같은 Redis를 보며, 워커는 처리 전/중에 플래그를 확인한다.
type Registry struct {
	rdb *redis.Client
}

func NewRegistry(rdb *redis.Client) *Registry {
	return &Registry{rdb: rdb}
}

func flagKey(jobID string) string {
	return fmt.Sprintf("artwork:cancel:%s", jobID)
}

// MarkCancelled - Job 취소 요청 기록
func (r *Registry) MarkCancelled(ctx context.Context, jobID string) error {
	log.Printf("🛑 Job 취소 요청: %s", jobID)
	return r.rdb.Set(ctx, flagKey(jobID), "1", flagTTL).Err()
}

// IsCancelled - 취소 여부 확인. Redis 오류 시 false (취소 안 됨으로 처리)
func (r *Registry) IsCancelled(ctx context.Context, jobID string) bool {
	val, err := r.rdb.Exists(ctx, flagKey(jobID)).Result()
	if err != nil {
		log.Printf("⚠️ 취소 플래그 조회 실패 (job=%s): %v", jobID, err)
		return false
	}
	return val > 0
}

// Watch - Job 처리 중 취소 플래그를 주기적으로 확인하고, 감지되면 cancelFn을 호출한다.
// 반환된 stop 함수로 감시를 종료한다.
func (r *Registry) Watch(ctx context.Context, jobID string, cancelFn context.CancelFunc) (stop func()) {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if r.IsCancelled(ctx, jobID) {
					log.Printf("🛑 Job %s 취소 감지, 파이프라인 중단", jobID)
					cancelFn()
					return
				}
			}
		}
	}()

	return func() { close(done) }
}
