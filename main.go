package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"travel-art-forge-server/modules/artworks"
	"travel-art-forge-server/modules/common/cancel"
	"travel-art-forge-server/modules/common/config"
	"travel-art-forge-server/modules/common/database"
	commonredis "travel-art-forge-server/modules/common/redis"
	generateartwork "travel-art-forge-server/modules/generate-artwork"
	"travel-art-forge-server/modules/jobs"
	"travel-art-forge-server/modules/progress"
)

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "travel-art-forge",
	})
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// 공용 클라이언트
	db := database.NewClient()
	if db == nil {
		log.Fatal("❌ Failed to initialize database client")
	}

	service, err := generateartwork.NewService()
	if err != nil {
		log.Fatalf("❌ Failed to initialize artwork service: %v", err)
	}

	// 진행상황 허브
	hub := progress.NewHub()

	// Redis Queue Worker 시작 (백그라운드, 실패해도 동기 API는 동작)
	go generateartwork.StartWorker(hub)

	// 비동기 등록용 Redis 연결 (워커와 별도)
	rdb := commonredis.Connect(cfg)

	var registry *cancel.Registry
	if rdb != nil {
		registry = cancel.NewRegistry(rdb)
	}

	// 핸들러
	generateHandler := generateartwork.NewHandler(service)
	artworksHandler := artworks.NewHandler(db)
	jobsHandler := jobs.NewHandler(db, registry)
	progressHandler := progress.NewHandler(hub)

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")

	r.HandleFunc("/api/generate-artwork", generateHandler.HandleGenerate).Methods("POST", "OPTIONS")
	if rdb != nil {
		enqueueHandler := generateartwork.NewEnqueueHandler(rdb, db)
		r.HandleFunc("/api/generate-artwork/enqueue", enqueueHandler.HandleEnqueue).Methods("POST", "OPTIONS")
	} else {
		log.Printf("⚠️ Redis 연결 실패, 비동기 등록 엔드포인트 비활성화")
	}

	r.HandleFunc("/api/jobs/{jobId}", jobsHandler.HandleGetJob).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/jobs/{jobId}/cancel", jobsHandler.HandleCancel).Methods("POST", "OPTIONS")

	r.HandleFunc("/api/artworks", artworksHandler.HandleList).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/artworks/{id}/favorite", artworksHandler.HandleFavorite).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/artworks/{id}", artworksHandler.HandleDelete).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/ws/progress", progressHandler.HandleWebSocket)

	log.Printf("🚀 Travel Art Forge Server starting on port %s", cfg.Port)
	log.Printf("🎨 Generate endpoint: http://localhost:%s/api/generate-artwork", cfg.Port)
	log.Printf("📡 Progress WebSocket: ws://localhost:%s/ws/progress?job={jobId}", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)

	// 서버 시작
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
