package progress

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleWebSocket - GET /ws/progress?job={jobId}
// 연결된 클라이언트에게 해당 job의 단계 전이를 실시간 중계한다.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "job query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket 업그레이드 실패: %v", err)
		return
	}

	sub := h.hub.Subscribe(jobID)

	// 읽기 펌프: 클라이언트 끊김 감지용
	go func() {
		defer h.hub.Unsubscribe(sub)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 쓰기 펌프
	go func() {
		defer conn.Close()
		for update := range sub.Send {
			if err := conn.WriteJSON(update); err != nil {
				log.Printf("⚠️ WebSocket 전송 실패 (job=%s): %v", jobID, err)
				return
			}
		}
	}()
}
