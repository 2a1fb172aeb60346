package progress

import (
	"log"
	"sync"
	"time"
)

// Update - 파이프라인 단계 전이 알림
type Update struct {
	JobID     string    `json:"jobId"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscriber - WebSocket 클라이언트 1개의 전송 채널
type Subscriber struct {
	JobID string
	Send  chan Update
}

// Hub - jobId별 구독자 관리. 발행은 논블로킹: 느린 클라이언트는 업데이트를 잃는다.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]bool
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscriber]bool),
	}
}

// Subscribe - jobId 구독 등록
func (h *Hub) Subscribe(jobID string) *Subscriber {
	sub := &Subscriber{
		JobID: jobID,
		Send:  make(chan Update, 16),
	}

	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[*Subscriber]bool)
	}
	h.subs[jobID][sub] = true
	h.mu.Unlock()

	log.Printf("👀 진행상황 구독: job=%s", jobID)
	return sub
}

// Unsubscribe - 구독 해제 및 채널 정리
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[sub.JobID]; ok {
		if set[sub] {
			delete(set, sub)
			close(sub.Send)
		}
		if len(set) == 0 {
			delete(h.subs, sub.JobID)
		}
	}
	h.mu.Unlock()
}

// Publish - jobId의 모든 구독자에게 단계 전이 발행 (논블로킹)
func (h *Hub) Publish(jobID, stage, detail string) {
	update := Update{
		JobID:     jobID,
		Stage:     stage,
		Detail:    detail,
		Timestamp: time.Now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[jobID] {
		select {
		case sub.Send <- update:
		default:
			// 버퍼 가득 찬 구독자는 건너뜀
		}
	}
}
