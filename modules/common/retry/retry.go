package retry

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// Do - 레이트리밋 오류에 한해 fn을 재시도하는 헬퍼.
// 429가 아닌 오류는 즉시 반환한다. attempts는 최초 시도를 포함한 총 횟수.
func Do(ctx context.Context, attempts int, wait time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			log.Printf("🔄 [Retry] attempt %d/%d", attempt, attempts)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !IsRateLimited(lastErr) {
			return lastErr
		}

		if attempt < attempts {
			log.Printf("⚠️  [Retry] rate limited, waiting %s before retry: %v", wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("exhausted %d attempts, last error: %w", attempts, lastErr)
}

// IsRateLimited - 429 / 쿼터 초과 계열 오류인지 확인
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota")
}
